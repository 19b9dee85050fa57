package usecase

import (
	"regexp"
	"strings"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

// Rule tables for the heuristic intent classifier. All matching runs on
// Normalize()d text, so the entries carry no accents or capitals. They
// are package vars so the tables can be extended or replaced without
// touching ranking or selection logic.
var (
	outOfDomainPrefixes = []string{
		"que es ",
		"que significa ",
		"que son ",
		"quien es ",
		"quienes son ",
		"quien fue ",
		"explica ",
		"explicame ",
		"definicion de ",
		"define ",
		"de que trata ",
		"cual es la capital",
		"cuanto es ",
	}

	whyMarkers = []string{"por que", "porque"}

	whyDomainKeywords = []string{
		"lugares", "lugar",
		"restaurantes", "restaurante",
		"sitios", "sitio",
		"negocios", "negocio",
		"opciones", "opcion",
		"esos", "esas", "estos", "estas", "ese", "esa",
	}

	whyRecommendationVerbs = []string{
		"recomiendas", "recomendaste", "recomendacion", "recomendaciones",
		"elegiste", "sugieres", "sugeriste",
		"deberia ir",
		"buenos", "buenas", "bueno", "buena",
		"mejores", "mejor",
	}
)

var quantityPattern = regexp.MustCompile(`\b(uno|una|dos|tres|1|2|3)\b`)

// ClassifyIntent builds the per-turn classification from normalized
// text. A search intent cannot be detected locally; those turns start
// as freeform and are upgraded once the collaborator returns a search
// action, which also fills the query, params, and requested index.
func ClassifyIntent(text string) domain.StructuredIntent {
	intent := domain.StructuredIntent{
		Text:     text,
		Quantity: ExtractQuantity(text),
	}
	switch {
	case IsOutOfDomain(text):
		intent.Kind = domain.IntentOutOfDomain
	case IsWhyQuestion(text):
		intent.Kind = domain.IntentWhyQuestion
	default:
		intent.Kind = domain.IntentFreeform
	}
	return intent
}

// IsOutOfDomain reports whether the text opens like a generic knowledge
// question. Such turns get a canned refusal and never reach the
// collaborators.
func IsOutOfDomain(text string) bool {
	for _, prefix := range outOfDomainPrefixes {
		if strings.HasPrefix(text, prefix) || text == strings.TrimSpace(prefix) {
			return true
		}
	}
	return false
}

// IsWhyQuestion reports whether the text asks for justification of a
// previous recommendation. A causal marker alone is not enough; the
// turn must also mention the recommended places or a recommendation
// verb, which keeps unrelated "porque" usage from matching.
func IsWhyQuestion(text string) bool {
	if !containsAny(text, whyMarkers) {
		return false
	}
	return containsAny(text, whyDomainKeywords) || containsAny(text, whyRecommendationVerbs)
}

// ExtractQuantity maps number words and digits in the text to a
// requested pick count, clamped to 1..3. Defaults to 1.
func ExtractQuantity(text string) int {
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	switch m[1] {
	case "tres", "3":
		return 3
	case "dos", "2":
		return 2
	default:
		return 1
	}
}

// NormalizeExplicitIndex converts the collaborator's item index to a
// 0-based offset. Users count from one ("el segundo"), so values >= 1
// shift down; zero and negatives select the first item.
func NormalizeExplicitIndex(index *int) *int {
	if index == nil {
		return nil
	}
	normalized := *index - 1
	if normalized < 0 {
		normalized = 0
	}
	return &normalized
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
