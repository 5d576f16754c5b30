package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"leaderboard-watcher/internal/aggregate"
	"leaderboard-watcher/internal/domain"
	"leaderboard-watcher/internal/retention"

	"github.com/rs/zerolog"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

const page = `Time: Mon, 01 Jan 2024 10:00:00 GMT
Map: Europe
    [Alpha]: 62.5%, 12 tiles
    [Beta]: 37.5%, 4 tiles
Time: Mon, 01 Jan 2024 11:00:00 GMT
Map: Asia
    [Alpha]: 55.0%, 9 tiles
    [Gamma]: 45.0%, 7 tiles
Time: Sat, 30 Dec 2023 11:00:00 GMT
Map: Ancient
    [Delta]: 99.0%, 9 tiles
`

type fakeSource struct {
	text  string
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

type memStore struct {
	records  []domain.GameRecord
	persists int
	err      error
}

func (m *memStore) LoadWindow(ctx context.Context, now time.Time) []domain.GameRecord {
	return retention.Evict(m.records, now, m.Window())
}

func (m *memStore) Persist(ctx context.Context, records []domain.GameRecord) error {
	if m.err != nil {
		return m.err
	}
	m.persists++
	m.records = records
	return nil
}

func (m *memStore) Window() time.Duration { return 24 * time.Hour }

type fakePublisher struct {
	records  [][]domain.GameRecord
	rankings [][]domain.WinCount
	failures []error
}

func (f *fakePublisher) NotifyRecords(ctx context.Context, records []domain.GameRecord) error {
	f.records = append(f.records, records)
	return nil
}

func (f *fakePublisher) NotifyRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error {
	f.rankings = append(f.rankings, ranking)
	return nil
}

func (f *fakePublisher) ReportFailure(ctx context.Context, cause error) {
	f.failures = append(f.failures, cause)
}

type panicTallier struct{}

func (panicTallier) Tally([]domain.GameRecord) []domain.WinCount { panic("boom") }

func newService(src Source, store *memStore, pub *fakePublisher, tallier Tallier) *WatchService {
	s := NewWatchService(src, store, pub, tallier, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func thresholdTallier() Tallier {
	return aggregate.New(aggregate.ResultLines, aggregate.AboveThreshold(50), 30, zerolog.Nop())
}

func TestRunCycleAnnouncesNewRecords(t *testing.T) {
	store := &memStore{}
	pub := &fakePublisher{}
	s := newService(&fakeSource{text: page}, store, pub, thresholdTallier())

	status, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if status.Outcome != OutcomeOK || status.Parsed != 3 || status.New != 2 || status.Retained != 2 {
		t.Errorf("unexpected status %+v", status)
	}
	if store.persists != 1 || len(store.records) != 2 {
		t.Errorf("expected one persist of 2 records, got %d persists and %d records", store.persists, len(store.records))
	}
	if len(pub.records) != 1 || len(pub.records[0]) != 2 {
		t.Fatalf("expected one notification with 2 records, got %+v", pub.records)
	}
	if pub.records[0][0].Map != "Europe" || pub.records[0][1].Map != "Asia" {
		t.Errorf("records not announced in page order: %+v", pub.records[0])
	}
	if len(pub.rankings) != 1 || len(pub.rankings[0]) != 1 || pub.rankings[0][0] != (domain.WinCount{Entity: "Alpha", Wins: 2}) {
		t.Errorf("unexpected ranking %+v", pub.rankings)
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	store := &memStore{}
	pub := &fakePublisher{}
	s := newService(&fakeSource{text: page}, store, pub, thresholdTallier())

	if _, err := s.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	status, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status.Outcome != OutcomeNoNew {
		t.Errorf("expected no_new on the second cycle, got %q", status.Outcome)
	}
	if store.persists != 1 {
		t.Errorf("second cycle must not write the store, saw %d persists", store.persists)
	}
	if len(pub.records) != 1 || len(pub.rankings) != 1 {
		t.Errorf("second cycle must not notify, saw %d record and %d ranking notifications", len(pub.records), len(pub.rankings))
	}
}

func TestRunCycleFetchFailure(t *testing.T) {
	existing := []domain.GameRecord{{Timestamp: now.Add(-time.Hour), Map: "Old", Results: []string{}}}
	store := &memStore{records: existing}
	pub := &fakePublisher{}
	src := &fakeSource{err: errors.New("failed to fetch after 3 attempts: unexpected status: 503")}
	s := newService(src, store, pub, thresholdTallier())

	status, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("fetch failure must not be a cycle error, got %v", err)
	}
	if status.Outcome != OutcomeNoData {
		t.Errorf("expected no_data, got %q", status.Outcome)
	}
	if store.persists != 0 || len(store.records) != 1 {
		t.Error("store was mutated after a failed fetch")
	}
	if len(pub.records) != 0 || len(pub.rankings) != 0 || len(pub.failures) != 0 {
		t.Error("notifications were sent after a failed fetch")
	}
}

func TestRunCycleEmptyPage(t *testing.T) {
	store := &memStore{}
	pub := &fakePublisher{}
	s := newService(&fakeSource{text: "  \n"}, store, pub, thresholdTallier())

	status, _ := s.RunCycle(context.Background())
	if status.Outcome != OutcomeNoData || store.persists != 0 || len(pub.records) != 0 {
		t.Errorf("empty page should skip the cycle, got %+v", status)
	}
}

func TestRunCyclePersistFailure(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	pub := &fakePublisher{}
	s := newService(&fakeSource{text: page}, store, pub, thresholdTallier())

	status, err := s.RunCycle(context.Background())
	if err == nil || status.Outcome != OutcomeFailed {
		t.Fatalf("expected a failed cycle, got %+v, %v", status, err)
	}
	if len(pub.records) != 0 {
		t.Error("records must not be announced when they could not be persisted")
	}
	if s.LastStatus().Outcome != OutcomeFailed {
		t.Errorf("last status not recorded: %+v", s.LastStatus())
	}
}

func TestTickReportsPanics(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(&fakeSource{text: page}, &memStore{}, pub, panicTallier{})

	s.Tick(context.Background())

	if len(pub.failures) != 1 || !strings.Contains(pub.failures[0].Error(), "boom") {
		t.Errorf("expected the panic to be reported, got %v", pub.failures)
	}
}

func TestReport(t *testing.T) {
	store := &memStore{records: []domain.GameRecord{
		{Timestamp: now.Add(-30 * time.Hour), Results: []string{"[Old]: 90"}},
		{Timestamp: now.Add(-time.Hour), Results: []string{"[New]: 90"}},
	}}
	pub := &fakePublisher{}
	s := newService(&fakeSource{}, store, pub, thresholdTallier())

	if err := s.Report(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(pub.rankings) != 1 || len(pub.rankings[0]) != 1 || pub.rankings[0][0].Entity != "New" {
		t.Errorf("expected only the in-window entity, got %+v", pub.rankings)
	}
	if store.persists != 0 {
		t.Error("report must not write the store")
	}
}
