package usecase

import (
	"math"
	"sort"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

// Rank orders a geosearch result set deterministically: nearest first,
// distance ties broken by higher average rating, then by review count,
// then by original position. Pure; the input slice is not modified.
func Rank(items []domain.SearchResultItem) []domain.SearchResultItem {
	out := make([]domain.SearchResultItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := sortDistance(out[i]), sortDistance(out[j])
		if di != dj {
			return di < dj
		}
		ri, rj := effectiveRating(out[i]), effectiveRating(out[j])
		if ri != rj {
			return ri > rj
		}
		return ratingCount(out[i]) > ratingCount(out[j])
	})
	return out
}

func sortDistance(item domain.SearchResultItem) float64 {
	if item.DistanceMeters < 0 {
		return math.Inf(1)
	}
	return item.DistanceMeters
}

func effectiveRating(item domain.SearchResultItem) float64 {
	if item.Rating == nil || item.Rating.Count == 0 {
		return 0
	}
	return item.Rating.Average
}

func ratingCount(item domain.SearchResultItem) int {
	if item.Rating == nil {
		return 0
	}
	return item.Rating.Count
}
