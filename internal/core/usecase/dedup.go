package usecase

import "github.com/serviciospe/discovery-assistant/internal/core/domain"

// DedupTracker remembers which items of the current result set were
// already surfaced, so consecutive turns over the same list move down
// the ranking instead of repeating the first pick. Tracking is scoped
// to one fingerprint: a different result set starts from scratch.
type DedupTracker struct {
	fingerprint string
	recommended map[string]struct{}
}

func NewDedupTracker() *DedupTracker {
	return &DedupTracker{recommended: make(map[string]struct{})}
}

// Select returns the next batch of picks from the ranked list.
//
// An in-range explicit index is honored first, even if that item was
// already recommended; an out-of-range index is ignored. The remaining
// slots fill with not-yet-recommended items in rank order. When the
// unique items run out the ranking is re-walked with the filter off,
// repeating earlier picks, so a non-empty list always yields exactly
// want picks. Every returned pick is marked as recommended.
func (t *DedupTracker) Select(ranked []domain.SearchResultItem, fingerprint string, want int, explicitIndex *int) []domain.SearchResultItem {
	if want < 1 {
		want = 1
	}

	if fingerprint != t.fingerprint {
		t.fingerprint = fingerprint
		t.recommended = make(map[string]struct{})
	}

	picks := make([]domain.SearchResultItem, 0, want)
	picked := make(map[string]struct{}, want)

	if explicitIndex != nil && *explicitIndex >= 0 && *explicitIndex < len(ranked) {
		item := ranked[*explicitIndex]
		picks = append(picks, item)
		picked[item.Source.Key()] = struct{}{}
	}

	for _, item := range ranked {
		if len(picks) >= want {
			break
		}
		key := item.Source.Key()
		if _, seen := t.recommended[key]; seen {
			continue
		}
		if _, dup := picked[key]; dup {
			continue
		}
		picks = append(picks, item)
		picked[key] = struct{}{}
	}

	// Backfill: not enough unseen items left. Re-walk the ranking with
	// the filter off, repeating earlier picks until the batch is full.
	for len(picks) < want && len(ranked) > 0 {
		for _, item := range ranked {
			if len(picks) >= want {
				break
			}
			picks = append(picks, item)
		}
	}

	for _, item := range picks {
		t.recommended[item.Source.Key()] = struct{}{}
	}
	return picks
}
