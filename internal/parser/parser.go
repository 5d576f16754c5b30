package parser

import (
	"bufio"
	"strings"

	"leaderboard-watcher/internal/domain"

	"github.com/rs/zerolog"
)

const timeLabel = "Time:"

type fieldSetter func(r *domain.GameRecord, value string)

// labels maps a line prefix to the record field it sets. "Time:" is handled
// by the state machine itself because it also starts a new record.
var labels = []struct {
	prefix string
	set    fieldSetter
}{
	{"Mode:", func(r *domain.GameRecord, v string) { r.Mode = v }},
	{"Map:", func(r *domain.GameRecord, v string) { r.Map = v }},
	{"Players:", func(r *domain.GameRecord, v string) { r.Players = v }},
	{"Diminisher:", func(r *domain.GameRecord, v string) { r.Diminisher = v }},
	{"Winning Clan:", func(r *domain.GameRecord, v string) { r.WinningClan = v }},
	{"Winner:", func(r *domain.GameRecord, v string) { r.WinningClan = v }},
	{"Team T:", func(r *domain.GameRecord, v string) { r.TeamT = v }},
	{"Percentage L:", func(r *domain.GameRecord, v string) { r.PercentageL = v }},
	{"Previous Points:", func(r *domain.GameRecord, v string) { r.PreviousPoints = v }},
	{"Gain:", func(r *domain.GameRecord, v string) { r.Gain = v }},
	{"Current Points:", func(r *domain.GameRecord, v string) { r.CurrentPoints = v }},
}

// pending is the record being accumulated between two "Time:" lines.
type pending struct {
	rawTime string
	record  domain.GameRecord
}

type machine struct {
	logger  zerolog.Logger
	current *pending
	out     []domain.GameRecord
	dropped int
}

// Parse turns the text of a leaderboard page into game records in page
// order. Records whose time cannot be parsed are dropped and logged.
func Parse(text string, logger zerolog.Logger) []domain.GameRecord {
	m := &machine{logger: logger, out: []domain.GameRecord{}}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("stopped reading page text early")
	}
	m.flush()

	logger.Debug().
		Int("records", len(m.out)).
		Int("dropped", m.dropped).
		Msg("page text parsed")

	return m.out
}

func (m *machine) feed(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if value, ok := strings.CutPrefix(trimmed, timeLabel); ok {
		m.flush()
		m.current = &pending{
			rawTime: strings.TrimSpace(value),
			record:  domain.GameRecord{Results: []string{}},
		}
		return
	}

	if m.current == nil {
		return
	}

	if strings.HasPrefix(trimmed, "[") {
		m.current.record.Results = append(m.current.record.Results, trimmed)
		return
	}

	for _, l := range labels {
		if value, ok := strings.CutPrefix(trimmed, l.prefix); ok {
			l.set(&m.current.record, strings.TrimSpace(value))
			return
		}
	}
}

func (m *machine) flush() {
	if m.current == nil {
		return
	}
	p := m.current
	m.current = nil

	ts, err := ParseTimestamp(p.rawTime)
	if err != nil {
		m.dropped++
		m.logger.Warn().
			Err(err).
			Str("time", p.rawTime).
			Str("map", p.record.Map).
			Msg("dropping record with unparseable time")
		return
	}

	p.record.Timestamp = ts
	m.out = append(m.out, p.record)
}
