package usecase

import (
	"fmt"
	"strings"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

// Summarize renders the assistant reply for a batch of picks: header,
// a lead sentence about the nearest pick, one line per pick, and a
// call-to-action when the ranking still holds unseen options. Pure.
func Summarize(origin *domain.Coordinates, ranked, picks []domain.SearchResultItem, want int) string {
	if len(picks) == 0 {
		return ""
	}

	var b strings.Builder
	if want == 1 {
		b.WriteString("Recomendación\n")
	} else {
		fmt.Fprintf(&b, "Top %d cercanos\n", len(picks))
	}

	nearest := nearestOf(picks)
	if dist := formatDistance(nearest.DistanceMeters); dist != "" {
		fmt.Fprintf(&b, "El lugar más cercano está %s", dist)
		if nearest.Rating != nil && nearest.Rating.Count > 0 {
			fmt.Fprintf(&b, " y tiene ⭐ %.1f (%d reseñas)", nearest.Rating.Average, nearest.Rating.Count)
		}
		b.WriteString(".\n")
	}

	for i, pick := range picks {
		fmt.Fprintf(&b, "%d. %s", i+1, pick.Name)
		if line := pick.Address.Line(); line != "" {
			fmt.Fprintf(&b, " · %s", line)
		}
		if dist := formatDistance(pick.DistanceMeters); dist != "" {
			fmt.Fprintf(&b, " · %s", dist)
		}
		if pick.Rating != nil && pick.Rating.Count > 0 {
			fmt.Fprintf(&b, " · ⭐ %.1f (%d)", pick.Rating.Average, pick.Rating.Count)
		}
		if origin != nil {
			fmt.Fprintf(&b, " · Cómo llegar: %s", BuildDirectionsURL(*origin, pick.Coordinates, TravelModeFor(pick.DistanceMeters)))
		}
		b.WriteString("\n")
	}

	if len(ranked) > len(picks) {
		b.WriteString("¿Quieres ver otra opción? Pídemela y te muestro la siguiente.")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExplainWhy justifies the previous recommendation from stored state
// alone, re-deriving the distance and rating leaders the same way the
// ranker orders results. No search is performed.
func ExplainWhy(state domain.RecommendationState) string {
	if state.Empty() {
		return ""
	}

	if state.Mode == domain.ModeSingle {
		item := state.Items[0]
		var b strings.Builder
		fmt.Fprintf(&b, "Te recomendé %s porque es la opción más cercana a ti", item.Name)
		if dist := formatDistance(item.DistanceMeters); dist != "" {
			fmt.Fprintf(&b, " (%s)", dist)
		}
		if item.Rating != nil && item.Rating.Count > 0 {
			fmt.Fprintf(&b, " y tiene una calificación de ⭐ %.1f con %d reseñas", item.Rating.Average, item.Rating.Count)
		}
		b.WriteString(".")
		return b.String()
	}

	nearest := nearestOf(state.Items)
	bestRated := bestRatedOf(state.Items)

	var b strings.Builder
	b.WriteString("Ordené las opciones por cercanía y luego por calificación. ")
	fmt.Fprintf(&b, "%s es la más cercana", nearest.Name)
	if dist := formatDistance(nearest.DistanceMeters); dist != "" {
		fmt.Fprintf(&b, " (%s)", dist)
	}
	b.WriteString(".")
	if bestRated.Source.Key() != nearest.Source.Key() && bestRated.Rating != nil && bestRated.Rating.Count > 0 {
		fmt.Fprintf(&b, " %s tiene la mejor calificación: ⭐ %.1f (%d reseñas).",
			bestRated.Name, bestRated.Rating.Average, bestRated.Rating.Count)
	}
	return b.String()
}

func nearestOf(items []domain.SearchResultItem) domain.SearchResultItem {
	best := items[0]
	for _, item := range items[1:] {
		if sortDistance(item) < sortDistance(best) {
			best = item
		}
	}
	return best
}

func bestRatedOf(items []domain.SearchResultItem) domain.SearchResultItem {
	best := items[0]
	for _, item := range items[1:] {
		if effectiveRating(item) > effectiveRating(best) {
			best = item
			continue
		}
		if effectiveRating(item) == effectiveRating(best) && ratingCount(item) > ratingCount(best) {
			best = item
		}
	}
	return best
}

func formatDistance(meters float64) string {
	if meters < 0 {
		return ""
	}
	if meters < 1000 {
		return fmt.Sprintf("a %.0f m", meters)
	}
	return fmt.Sprintf("a %.1f km", meters/1000)
}
