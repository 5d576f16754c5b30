package retention

import (
	"encoding/json"
	"fmt"
	"strings"

	"leaderboard-watcher/internal/domain"
	"leaderboard-watcher/internal/parser"
)

// decodeLegacy reads the bare array older clan_results.json files hold:
// one object per game keyed by the page labels ("Time", "Winning Clan",
// "Res", ...) with the time as page text. Keys are matched ignoring case,
// spaces and underscores, so arrays of current records load as well.
// Entries whose time does not parse are dropped and counted.
func decodeLegacy(data []byte) ([]domain.GameRecord, int, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	records := make([]domain.GameRecord, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		r, err := legacyRecord(entry)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, r)
	}
	return records, dropped, nil
}

func legacyRecord(entry map[string]json.RawMessage) (domain.GameRecord, error) {
	var r domain.GameRecord
	var stamp string

	for key, value := range entry {
		if string(value) == "null" {
			continue
		}
		name := normalizeKey(key)
		if name == "res" || name == "results" {
			if err := json.Unmarshal(value, &r.Results); err != nil {
				return r, fmt.Errorf("failed to decode %s: %w", key, err)
			}
			continue
		}

		field := legacyField(&r, name, &stamp)
		if field == nil {
			continue
		}
		if err := json.Unmarshal(value, field); err != nil {
			return r, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}

	ts, err := parser.ParseTimestamp(stamp)
	if err != nil {
		return r, err
	}
	r.Timestamp = ts
	return r, nil
}

func legacyField(r *domain.GameRecord, name string, stamp *string) *string {
	switch name {
	case "time":
		return stamp
	case "mode":
		return &r.Mode
	case "map":
		return &r.Map
	case "players":
		return &r.Players
	case "diminisher":
		return &r.Diminisher
	case "winningclan", "winner":
		return &r.WinningClan
	case "teamt":
		return &r.TeamT
	case "percentagel":
		return &r.PercentageL
	case "previouspoints":
		return &r.PreviousPoints
	case "gain":
		return &r.Gain
	case "currentpoints":
		return &r.CurrentPoints
	}
	return nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "")
	return strings.ReplaceAll(key, "_", "")
}
