package retention

import (
	"time"

	"leaderboard-watcher/internal/domain"
)

// Evict keeps the records whose timestamp is not older than now-window.
// Records with a zero timestamp are always evicted.
func Evict(records []domain.GameRecord, now time.Time, window time.Duration) []domain.GameRecord {
	cutoff := now.Add(-window)
	kept := make([]domain.GameRecord, 0, len(records))
	for _, r := range records {
		if r.Timestamp.IsZero() || r.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Merge appends to existing every incoming record not already present,
// keeping existing order first and incoming order after it.
func Merge(existing, incoming []domain.GameRecord) []domain.GameRecord {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]domain.GameRecord, 0, len(existing)+len(incoming))

	for _, r := range existing {
		key := r.Fingerprint()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range incoming {
		key := r.Fingerprint()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}
