// Package report renders games and tournaments for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/pkg/bargain"
)

// Styles holds the lipgloss styles used by the renderers.
type Styles struct {
	Title    lipgloss.Style
	Director lipgloss.Style
	Accept   lipgloss.Style
	Reject   lipgloss.Style
	Muted    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
}

// NewStyles builds styles for r. Colour is dropped automatically when r's
// output is not a terminal.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD54F")),
		Director: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#4FC3F7")),
		Accept:   r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		Reject:   r.NewStyle().Foreground(lipgloss.Color("#EF5350")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("#888888")),
		Header:   r.NewStyle().Bold(true).Padding(0, 1),
		Cell:     r.NewStyle().Padding(0, 1),
	}
}

// Seating renders the seat order with the director marked.
func (s Styles) Seating(seating []string) string {
	parts := make([]string, len(seating))
	for i, id := range seating {
		if i == 0 {
			parts[i] = s.Director.Render("★ " + id)
			continue
		}
		parts[i] = fmt.Sprintf("%d. %s", i, id)
	}
	return "Seating: " + strings.Join(parts, "  ")
}

// Proposal renders a director's proposal as "identity: units" pairs.
func (s Styles) Proposal(e bargain.ProposalEvent) string {
	head := fmt.Sprintf("Round %d: %s (%s) proposes", e.Round, s.Director.Render(e.Director), e.Strategy)
	if !e.Valid() {
		return head + " " + s.Reject.Render("an invalid split: "+e.Err.Error())
	}
	parts := make([]string, len(e.Distribution))
	for i, v := range e.Distribution {
		id := "?"
		if i < len(e.Seating) {
			id = e.Seating[i]
		}
		parts[i] = fmt.Sprintf("%s: %d", id, v)
	}
	return head + " " + strings.Join(parts, ", ")
}

// Votes renders the tally with accept and reject percentages.
func (s Styles) Votes(e bargain.VoteEvent) string {
	var accept, reject []string
	for _, b := range e.Ballots {
		if b.Accept {
			accept = append(accept, b.Seat)
		} else {
			reject = append(reject, b.Seat)
		}
	}
	return fmt.Sprintf("  %s %d (%.1f%%) [%s]  %s %d (%.1f%%) [%s]",
		s.Accept.Render("accept"), e.AcceptCount, e.AcceptPercentage, strings.Join(accept, ", "),
		s.Reject.Render("reject"), e.RejectCount, e.RejectPercentage, strings.Join(reject, ", "))
}

// Decision renders whether the proposal passed.
func (s Styles) Decision(e bargain.VoteEvent) string {
	if e.Accepted {
		return "  " + s.Accept.Render("The proposal is accepted.")
	}
	return "  " + s.Reject.Render(e.Director+" walks the plank.")
}

// Elimination renders a director leaving the game.
func (s Styles) Elimination(e bargain.EliminationEvent) string {
	line := fmt.Sprintf("  %s is out", e.Seat)
	if e.Invalid {
		line += " for an invalid proposal"
	}
	if e.NextDirector != "" {
		line += "; " + s.Director.Render(e.NextDirector) + " directs next"
	}
	return s.Muted.Render(line)
}

// Awards renders the final awards of a game in seating order.
func (s Styles) Awards(rec model.GameRecord) string {
	parts := make([]string, len(rec.Seating))
	for i, id := range rec.Seating {
		parts[i] = fmt.Sprintf("%s: %d", id, rec.Awards[id])
	}
	title := s.Title.Render(fmt.Sprintf("Game %d", rec.Number))
	return fmt.Sprintf("%s %s after %d round(s): %s", title, strings.ReplaceAll(rec.Resolution, "_", " "), rec.Rounds, strings.Join(parts, ", "))
}

// StandingsTable renders running totals.
func (s Styles) StandingsTable(standings []model.Standing) string {
	rows := make([][]string, len(standings))
	for i, st := range standings {
		rows[i] = []string{fmt.Sprint(st.Position), st.Entrant, st.Strategy, fmt.Sprint(st.Units)}
	}
	return s.table([]string{"#", "Entrant", "Strategy", "Units"}, rows)
}

// StatsTable renders per-strategy statistics.
func (s Styles) StatsTable(stats []model.StrategyStats) string {
	rows := make([][]string, len(stats))
	for i, st := range stats {
		rows[i] = []string{
			st.Strategy,
			fmt.Sprint(st.Games),
			fmt.Sprintf("%d/%d", st.AcceptedProposals, st.Proposals),
			percent(st.SuccessRate),
			fmt.Sprint(st.InvalidProposals),
			percent(st.SelfGiftRatio),
			fmt.Sprintf("%d/%d", st.AcceptVotes, st.Votes),
			percent(st.AcceptRate),
			fmt.Sprint(st.UnitsWon),
		}
	}
	return s.table([]string{"Strategy", "Games", "Passed", "Success", "Invalid", "Self gift", "Yes votes", "Yes rate", "Units"}, rows)
}

// CatalogTable renders the registered strategies.
func (s Styles) CatalogTable(entries []bot.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		seeded := ""
		if e.Randomized {
			seeded = "yes"
		}
		rows[i] = []string{e.Name, seeded, e.Description}
	}
	return s.table([]string{"Strategy", "Seeded", "Behaviour"}, rows)
}

// LeaderboardTable renders cross-tournament totals.
func (s Styles) LeaderboardTable(entries []model.LeaderboardEntry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{fmt.Sprint(i + 1), e.Strategy, fmt.Sprint(e.Units)}
	}
	return s.table([]string{"#", "Strategy", "Units"}, rows)
}

func (s Styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
