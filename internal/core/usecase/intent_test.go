package usecase

import (
	"testing"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		text         string
		wantKind     domain.IntentKind
		wantQuantity int
	}{
		{"que es fortnite", domain.IntentOutOfDomain, 1},
		{"por que me recomiendas esos lugares", domain.IntentWhyQuestion, 1},
		{"dame tres restaurantes cerca", domain.IntentFreeform, 3},
		{"hola", domain.IntentFreeform, 1},
	}
	for _, tc := range cases {
		got := ClassifyIntent(tc.text)
		if got.Kind != tc.wantKind {
			t.Fatalf("ClassifyIntent(%q).Kind = %s, want %s", tc.text, got.Kind, tc.wantKind)
		}
		if got.Quantity != tc.wantQuantity {
			t.Fatalf("ClassifyIntent(%q).Quantity = %d, want %d", tc.text, got.Quantity, tc.wantQuantity)
		}
		if got.Text != tc.text {
			t.Fatalf("ClassifyIntent(%q).Text = %q", tc.text, got.Text)
		}
		if got.RequestedIndex != nil || got.SearchParams != nil {
			t.Fatalf("ClassifyIntent(%q) filled search fields before any action: %+v", tc.text, got)
		}
	}
}

func TestIsOutOfDomain(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"que es fortnite", true},
		{"que significa fomo", true},
		{"quien es messi", true},
		{"explica la fotosintesis", true},
		{"definicion de entropia", true},
		{"busca una farmacia cerca", false},
		{"quiero un restaurante barato", false},
		{"porque me recomiendas esos lugares", false},
	}
	for _, tc := range cases {
		if got := IsOutOfDomain(tc.text); got != tc.want {
			t.Fatalf("IsOutOfDomain(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsWhyQuestionNeedsMarkerAndDomainSignal(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"por que me recomiendas esos lugares", true},
		{"porque esos restaurantes", true},
		{"por que deberia ir ahi", true},
		{"por que son buenos esos sitios", true},
		// causal marker without a domain signal
		{"porque si", false},
		{"no fui porque llovio", false},
		// domain words without a causal marker
		{"restaurantes cerca", false},
	}
	for _, tc := range cases {
		if got := IsWhyQuestion(tc.text); got != tc.want {
			t.Fatalf("IsWhyQuestion(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestExtractQuantity(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"dame dos opciones", 2},
		{"muestrame tres restaurantes", 3},
		{"top 3 de pizzerias", 3},
		{"quiero 2 farmacias", 2},
		{"una lavanderia cerca", 1},
		{"busca un gimnasio", 1},
		{"dame 7 lugares", 1},
	}
	for _, tc := range cases {
		if got := ExtractQuantity(tc.text); got != tc.want {
			t.Fatalf("ExtractQuantity(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestNormalizeExplicitIndex(t *testing.T) {
	if got := NormalizeExplicitIndex(nil); got != nil {
		t.Fatalf("expected nil for absent index, got %v", *got)
	}

	two := 2
	if got := NormalizeExplicitIndex(&two); got == nil || *got != 1 {
		t.Fatalf("expected 1-based index 2 to normalize to 1, got %v", got)
	}

	zero := 0
	if got := NormalizeExplicitIndex(&zero); got == nil || *got != 0 {
		t.Fatalf("expected index 0 to stay at the first item, got %v", got)
	}

	negative := -3
	if got := NormalizeExplicitIndex(&negative); got == nil || *got != 0 {
		t.Fatalf("expected negative index to clamp to 0, got %v", got)
	}
}
