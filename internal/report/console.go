package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/model"
	"github.com/freeeve/regifting/pkg/bargain"
)

// Console prints tournament progress to a writer. In quiet mode only game
// results and the final tables are printed.
type Console struct {
	w      io.Writer
	styles Styles
	quiet  bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{w: w, styles: NewStyles(lipgloss.NewRenderer(w)), quiet: quiet}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.w, s)
}

func (c *Console) OnTournamentStart(_ string, cfg bot.TournamentConfig) {
	c.println(c.styles.Title.Render(fmt.Sprintf("%s: %d games, %d units, seed %d", cfg.Name, cfg.Games, cfg.Pool, cfg.Seed)))
}

func (c *Console) OnGameStart(_ string, number int, seating []string) {
	if c.quiet {
		return
	}
	c.println("")
	c.println(c.styles.Title.Render(fmt.Sprintf("Game %d", number)))
	c.println(c.styles.Seating(seating))
}

func (c *Console) OnProposal(e bargain.ProposalEvent) {
	if !c.quiet {
		c.println(c.styles.Proposal(e))
	}
}

func (c *Console) OnVotes(e bargain.VoteEvent) {
	if c.quiet {
		return
	}
	c.println(c.styles.Votes(e))
	c.println(c.styles.Decision(e))
}

func (c *Console) OnElimination(e bargain.EliminationEvent) {
	if !c.quiet {
		c.println(c.styles.Elimination(e))
	}
}

func (c *Console) OnOutcome(bargain.Outcome) {}

func (c *Console) OnGameEnd(_ string, rec model.GameRecord) {
	c.println(c.styles.Awards(rec))
}

func (c *Console) OnTournamentEnd(res *bot.TournamentResult) {
	c.println("")
	c.println(c.styles.Title.Render("Standings"))
	c.println(c.styles.StandingsTable(res.Standings))
	c.println(c.styles.Title.Render("Strategy statistics"))
	c.println(c.styles.StatsTable(res.Stats))
}

// PrintGame renders the awards of a game reported by a server.
func (c *Console) PrintGame(rec model.GameRecord) {
	c.println(c.styles.Awards(rec))
}
