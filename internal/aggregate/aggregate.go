package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/domain"

	"github.com/rs/zerolog"
)

// Extractor lists the entities a record contributes, plus the lines it had
// to skip.
type Extractor func(r domain.GameRecord) ([]Entry, []error)

// Predicate decides whether an entry counts as a win. An error means the
// entry cannot be judged and is skipped.
type Predicate func(e Entry) (bool, error)

// ResultLines yields one entry per result line.
func ResultLines(r domain.GameRecord) ([]Entry, []error) {
	entries := make([]Entry, 0, len(r.Results))
	var errs []error
	for _, line := range r.Results {
		e, err := ParseResultLine(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, errs
}

// WinningClanField yields the record's declared winner, if any.
func WinningClanField(r domain.GameRecord) ([]Entry, []error) {
	name := strings.Trim(strings.TrimSpace(r.WinningClan), "[] ")
	if name == "" {
		return nil, nil
	}
	return []Entry{{Entity: name}}, nil
}

func Occurrence() Predicate {
	return func(Entry) (bool, error) {
		return true, nil
	}
}

// AboveThreshold counts an entry only when its percentage is strictly
// greater than threshold.
func AboveThreshold(threshold float64) Predicate {
	return func(e Entry) (bool, error) {
		if !e.HasPercentage {
			return false, fmt.Errorf("no numeric percentage for %q", e.Entity)
		}
		return e.Percentage > threshold, nil
	}
}

type Aggregator struct {
	extract Extractor
	win     Predicate
	topN    int
	logger  zerolog.Logger
}

func New(extract Extractor, win Predicate, topN int, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		extract: extract,
		win:     win,
		topN:    topN,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// NewFromConfig wires the policy chosen by WIN_POLICY and WIN_ENTITY.
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Aggregator {
	extract := ResultLines
	if cfg.WinEntity == config.EntityWinningClan {
		extract = WinningClanField
	}

	win := Occurrence()
	if cfg.WinPolicy == config.PolicyThreshold {
		win = AboveThreshold(cfg.WinThreshold)
	}

	return New(extract, win, cfg.TopN, logger)
}

// Tally counts wins per entity over records and ranks them by count. Equal
// counts keep the order in which the entities first appeared, whether or not
// that appearance was a win. Entities without a win are not listed.
func (a *Aggregator) Tally(records []domain.GameRecord) []domain.WinCount {
	counts := map[string]int{}
	var order []string
	skipped := 0

	for _, r := range records {
		entries, errs := a.extract(r)
		for _, err := range errs {
			skipped++
			a.logger.Warn().Err(err).Time("game_time", r.Timestamp).Msg("skipping result line")
		}

		for _, e := range entries {
			if _, seen := counts[e.Entity]; !seen {
				order = append(order, e.Entity)
				counts[e.Entity] = 0
			}
			won, err := a.win(e)
			if err != nil {
				skipped++
				a.logger.Warn().Err(err).Time("game_time", r.Timestamp).Msg("skipping result line")
				continue
			}
			if won {
				counts[e.Entity]++
			}
		}
	}

	ranking := make([]domain.WinCount, 0, len(order))
	for _, entity := range order {
		ranking = append(ranking, domain.WinCount{Entity: entity, Wins: counts[entity]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Wins > ranking[j].Wins
	})

	// zero-win entities sort last, so dropping the tail keeps the order
	for len(ranking) > 0 && ranking[len(ranking)-1].Wins == 0 {
		ranking = ranking[:len(ranking)-1]
	}

	if a.topN > 0 && len(ranking) > a.topN {
		ranking = ranking[:a.topN]
	}

	a.logger.Debug().
		Int("records", len(records)).
		Int("entities", len(order)).
		Int("skipped_lines", skipped).
		Msg("win tally computed")

	return ranking
}
