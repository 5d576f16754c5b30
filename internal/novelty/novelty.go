package novelty

import "leaderboard-watcher/internal/domain"

// Filter returns the fresh records that are not in retained, in their
// fresh order. A record repeated within fresh is returned once.
func Filter(retained, fresh []domain.GameRecord) []domain.GameRecord {
	known := make(map[string]struct{}, len(retained)+len(fresh))
	for _, r := range retained {
		known[r.Fingerprint()] = struct{}{}
	}

	novel := []domain.GameRecord{}
	for _, r := range fresh {
		key := r.Fingerprint()
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		novel = append(novel, r)
	}
	return novel
}
