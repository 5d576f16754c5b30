package notifier

import (
	"fmt"
	"strings"
	"time"

	"leaderboard-watcher/internal/domain"

	"github.com/bwmarrin/discordgo"
)

const (
	timeLayout       = "Mon, 02 Jan 2006 15:04:05 MST"
	embedColor       = 0x2b7de9
	maxEmbedDescChar = 4096
)

type field struct {
	name  string
	value string
}

// fields lists a record's scalar fields in their fixed display order,
// leaving out the ones the page did not provide.
func fields(r domain.GameRecord) []field {
	all := []field{
		{"Time", r.Timestamp.UTC().Format(timeLayout)},
		{"Mode", r.Mode},
		{"Map", r.Map},
		{"Players", r.Players},
		{"Diminisher", r.Diminisher},
		{"Winning Clan", r.WinningClan},
		{"Team T", r.TeamT},
		{"Percentage L", r.PercentageL},
		{"Previous Points", r.PreviousPoints},
		{"Gain", r.Gain},
		{"Current Points", r.CurrentPoints},
	}
	out := all[:0]
	for _, f := range all {
		if f.value != "" {
			out = append(out, f)
		}
	}
	return out
}

// RecordBlock renders a record as a Markdown field block.
func RecordBlock(r domain.GameRecord) string {
	var sb strings.Builder
	for _, f := range fields(r) {
		fmt.Fprintf(&sb, "**%s:** %s\n", f.name, f.value)
	}
	if len(r.Results) > 0 {
		sb.WriteString("**Results:**\n")
		for _, line := range r.Results {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func RecordEmbed(r domain.GameRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "New game result",
		Color:     embedColor,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	if r.Map != "" {
		embed.Title = r.Map
	}

	for _, f := range fields(r) {
		if f.name == "Time" || f.name == "Map" {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.name,
			Value:  f.value,
			Inline: true,
		})
	}

	if len(r.Results) > 0 {
		desc := strings.Join(r.Results, "\n")
		if runes := []rune(desc); len(runes) > maxEmbedDescChar {
			desc = string(runes[:maxEmbedDescChar-1]) + "…"
		}
		embed.Description = desc
	}
	return embed
}

// RankingText renders the win tally under a "Clan Wins in the Last ..." header.
func RankingText(ranking []domain.WinCount, window time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Clan Wins in the Last %s:\n", windowLabel(window))
	for _, wc := range ranking {
		unit := "wins"
		if wc.Wins == 1 {
			unit = "win"
		}
		fmt.Fprintf(&sb, "%s: %d %s\n", wc.Entity, wc.Wins, unit)
	}
	return sb.String()
}

func ErrorText(err error) string {
	return fmt.Sprintf("An error occurred while running the scraper: %v", err)
}

func windowLabel(window time.Duration) string {
	if window%time.Hour == 0 {
		hours := int(window / time.Hour)
		if hours == 1 {
			return "Hour"
		}
		return fmt.Sprintf("%d Hours", hours)
	}
	return window.String()
}

// groups splits records into consecutive groups of at most size.
func groups(records []domain.GameRecord, size int) [][]domain.GameRecord {
	if size <= 0 {
		size = len(records)
	}
	var out [][]domain.GameRecord
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}
