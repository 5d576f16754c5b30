package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// GameRecord is one completed match as listed on the leaderboard page.
type GameRecord struct {
	Timestamp      time.Time `json:"time"`
	Mode           string    `json:"mode,omitempty"`
	Map            string    `json:"map,omitempty"`
	Players        string    `json:"players,omitempty"`
	Diminisher     string    `json:"diminisher,omitempty"`
	WinningClan    string    `json:"winning_clan,omitempty"`
	TeamT          string    `json:"team_t,omitempty"`
	PercentageL    string    `json:"percentage_l,omitempty"`
	PreviousPoints string    `json:"previous_points,omitempty"`
	Gain           string    `json:"gain,omitempty"`
	CurrentPoints  string    `json:"current_points,omitempty"`
	Results        []string  `json:"results"`
}

// Fingerprint identifies the occurrence by its scalar fields. Result lines
// are not part of a record's identity.
func (r GameRecord) Fingerprint() string {
	fields := []string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Mode,
		r.Map,
		r.Players,
		r.Diminisher,
		r.WinningClan,
		r.TeamT,
		r.PercentageL,
		r.PreviousPoints,
		r.Gain,
		r.CurrentPoints,
	}

	var sb strings.Builder
	for _, f := range fields {
		// length prefix keeps "ab","c" apart from "a","bc"
		sb.WriteString(strconv.Itoa(len(f)))
		sb.WriteByte(':')
		sb.WriteString(f)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// WinCount is one ranked entry of a win tally.
type WinCount struct {
	Entity string `json:"entity"`
	Wins   int    `json:"wins"`
}

type CycleStatus struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Parsed     int       `json:"parsed"`
	New        int       `json:"new"`
	Retained   int       `json:"retained"`
	Outcome    string    `json:"outcome"` // "ok", "no_data", "no_new", "failed"
	Error      string    `json:"error,omitempty"`
}
