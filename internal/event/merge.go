package event

import (
	"fmt"
	"sort"

	"github.com/conflictmap/tracker/internal/metrics"
)

// ErrEventLoss marks a merge result that is smaller than the existing store.
// It means identity-key extraction or filtering is broken; the caller must
// refuse to persist and leave the previous store untouched.
var ErrEventLoss = fmt.Errorf("merge would lose events")

// Merge folds freshly normalized events into the existing store. Duplicates
// (by identity key) are dropped, new events sort ahead of existing ones on
// equal timestamps, the result is ordered most-recent-first and capped at max.
//
// Timestamps are normalized RFC3339 strings, so plain string comparison
// orders them correctly.
func Merge(existing, fresh []Event, max int) ([]Event, error) {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[e.Key()] = struct{}{}
	}

	unique := make([]Event, 0, len(fresh))
	for _, e := range fresh {
		if _, dup := seen[e.Key()]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[e.Key()] = struct{}{}
		unique = append(unique, e)
	}

	// New before existing: the stable sort keeps that order for equal times.
	merged := make([]Event, 0, len(unique)+len(existing))
	merged = append(merged, unique...)
	merged = append(merged, existing...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time > merged[j].Time
	})

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}

	floor := len(existing)
	if max > 0 && max < floor {
		floor = max
	}
	if len(merged) < floor {
		return nil, fmt.Errorf("%w: %d existing, %d after merge", ErrEventLoss, len(existing), len(merged))
	}

	return merged, nil
}
