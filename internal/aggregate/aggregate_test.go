package aggregate

import (
	"errors"
	"testing"
	"time"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func game(results ...string) domain.GameRecord {
	return domain.GameRecord{
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Results:   results,
	}
}

func TestParseResultLine(t *testing.T) {
	tests := []struct {
		line string
		want Entry
	}{
		{"[Alpha]: 62.5, other", Entry{Entity: "Alpha", Percentage: 62.5, HasPercentage: true}},
		{"  [Beta]: 40.0%, 3 tiles", Entry{Entity: "Beta", Percentage: 40, HasPercentage: true}},
		{"[Red Fox]: score=75.25, x", Entry{Entity: "Red Fox", Percentage: 75.25, HasPercentage: true}},
		{"Gamma: 12", Entry{Entity: "Gamma", Percentage: 12, HasPercentage: true}},
		{"Delta tag: 5", Entry{Entity: "Delta", Percentage: 5, HasPercentage: true}},
		{"[Echo]: n/a, 0 tiles", Entry{Entity: "Echo"}},
	}

	for _, tt := range tests {
		got, err := ParseResultLine(tt.line)
		if err != nil {
			t.Errorf("ParseResultLine(%q) returned error: %v", tt.line, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseResultLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseResultLineMalformed(t *testing.T) {
	for _, line := range []string{"", "[Alpha] 60 percent", ": 60", "[]: 40"} {
		_, err := ParseResultLine(line)
		var lineErr *ResultLineError
		if !errors.As(err, &lineErr) {
			t.Errorf("ParseResultLine(%q): expected ResultLineError, got %v", line, err)
		}
	}
}

func TestThresholdScenario(t *testing.T) {
	agg := New(ResultLines, AboveThreshold(50), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{game("[Alpha]: 62.5, other", "[Beta]: 40.0, other")})
	want := []domain.WinCount{{Entity: "Alpha", Wins: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	agg := New(ResultLines, AboveThreshold(50), 0, zerolog.Nop())
	if got := agg.Tally([]domain.GameRecord{game("[Alpha]: 50.0, other")}); len(got) != 0 {
		t.Errorf("expected exactly 50%% not to count, got %+v", got)
	}
}

func TestOccurrencePolicy(t *testing.T) {
	agg := New(ResultLines, Occurrence(), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("[Alpha]: 62.5, other", "[Beta]: 40.0, other"),
		game("[Beta]: 10, other", "[Gamma]: n/a"),
	})
	want := []domain.WinCount{
		{Entity: "Beta", Wins: 2},
		{Entity: "Alpha", Wins: 1},
		{Entity: "Gamma", Wins: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedLinesSkipped(t *testing.T) {
	agg := New(ResultLines, AboveThreshold(50), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("garbage", "[Alpha]: abc, other", "[Alpha]: 70, other", "[Beta]"),
	})
	want := []domain.WinCount{{Entity: "Alpha", Wins: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRankingStableOnTies(t *testing.T) {
	agg := New(ResultLines, Occurrence(), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("[Zulu]: 1", "[Mike]: 1"),
		game("[Alpha]: 1", "[Mike]: 1"),
		game("[Zulu]: 1", "[Alpha]: 1", "[Kilo]: 1"),
	})
	want := []domain.WinCount{
		{Entity: "Zulu", Wins: 2},
		{Entity: "Mike", Wins: 2},
		{Entity: "Alpha", Wins: 2},
		{Entity: "Kilo", Wins: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTiesFollowFirstAppearanceNotFirstWin(t *testing.T) {
	agg := New(ResultLines, AboveThreshold(50), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("[A]: 10, other", "[C]: 90, other"),
		game("[B]: 60, other"),
		game("[A]: 70, other"),
	})
	want := []domain.WinCount{
		{Entity: "A", Wins: 1},
		{Entity: "C", Wins: 1},
		{Entity: "B", Wins: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroWinEntitiesNotListed(t *testing.T) {
	agg := New(ResultLines, AboveThreshold(50), 0, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("[Beta]: 40, other", "[Alpha]: 10, other"),
		game("[Gamma]: 55, other"),
	})
	want := []domain.WinCount{{Entity: "Gamma", Wins: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTopN(t *testing.T) {
	agg := New(ResultLines, Occurrence(), 2, zerolog.Nop())

	got := agg.Tally([]domain.GameRecord{
		game("[A]: 1", "[B]: 1", "[C]: 1"),
		game("[C]: 1"),
	})
	want := []domain.WinCount{{Entity: "C", Wins: 2}, {Entity: "A", Wins: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWinningClanField(t *testing.T) {
	a := game()
	a.WinningClan = "[Alpha]"
	b := game()
	b.WinningClan = "Beta"
	none := game("[Gamma]: 99")

	agg := New(WinningClanField, Occurrence(), 0, zerolog.Nop())
	got := agg.Tally([]domain.GameRecord{a, b, none, a})
	want := []domain.WinCount{{Entity: "Alpha", Wins: 2}, {Entity: "Beta", Wins: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFromConfig(t *testing.T) {
	records := []domain.GameRecord{game("[Alpha]: 62.5, other", "[Beta]: 40.0, other")}

	threshold := NewFromConfig(&config.Config{WinPolicy: config.PolicyThreshold, WinEntity: config.EntityResults, WinThreshold: 50}, zerolog.Nop())
	if got := threshold.Tally(records); len(got) != 1 {
		t.Errorf("threshold policy: expected 1 entity, got %+v", got)
	}

	occurrence := NewFromConfig(&config.Config{WinPolicy: config.PolicyOccurrence, WinEntity: config.EntityResults}, zerolog.Nop())
	if got := occurrence.Tally(records); len(got) != 2 {
		t.Errorf("occurrence policy: expected 2 entities, got %+v", got)
	}
}
