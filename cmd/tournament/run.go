package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freeeve/regifting/internal/bot"
	"github.com/freeeve/regifting/internal/config"
	"github.com/freeeve/regifting/internal/report"
	"github.com/freeeve/regifting/internal/repository"
	redisrepo "github.com/freeeve/regifting/internal/repository/redis"
	"github.com/freeeve/regifting/internal/repository/sqlstore"
)

type runOptions struct {
	name         string
	strategies   string
	roster       string
	pool         int
	games        int
	seed         int64
	shuffle      bool
	pollDirector bool
	jsonOut      bool
	quiet        bool
	archive      string
	dialect      string
	redisURL     string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a rotating tournament",
		Long: `Run plays one game per entrant by default, rotating the director seat so
every entrant directs once. Entrants come from --strategies (name or name*k,
comma separated) or a YAML --roster file.`,
		Example: `  tournament run --strategies rational,greedy*2,fair --pool 100 --seed 7
  tournament run --roster office.yaml --archive results.sqlite --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.tournamentConfig(cmd, root.configFile)
			if err != nil {
				return err
			}
			return runTournament(cmd, cfg, opts, root)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "tournament name")
	f.StringVarP(&opts.strategies, "strategies", "s", "", "comma separated entrants, e.g. rational,greedy*2")
	f.StringVarP(&opts.roster, "roster", "r", "", "YAML roster file (- for stdin)")
	f.IntVar(&opts.pool, "pool", bot.DefaultPool, "units divided each game")
	f.IntVarP(&opts.games, "games", "n", 0, "games to play (0 = one rotation)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")
	f.BoolVar(&opts.shuffle, "shuffle", false, "shuffle seats behind the director")
	f.BoolVar(&opts.pollDirector, "poll-director", false, "let the director vote on its own proposal")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "only print game results and final tables")
	f.StringVar(&opts.archive, "archive", "", "archive results (sqlite path or postgres URL)")
	f.StringVar(&opts.dialect, "dialect", "", "archive dialect: sqlite or postgres (guessed from --archive)")
	f.StringVar(&opts.redisURL, "redis", "", "Redis URL for the cross-tournament leaderboard")
	cmd.MarkFlagsMutuallyExclusive("strategies", "roster")
	return cmd
}

// tournamentConfig merges, in increasing precedence, the config file, the
// roster file and explicit flags.
func (o *runOptions) tournamentConfig(cmd *cobra.Command, configFile string) (bot.TournamentConfig, error) {
	appCfg, err := config.LoadFile(configFile)
	if err != nil {
		return bot.TournamentConfig{}, err
	}
	cfg := bot.TournamentConfig{Pool: appCfg.Pool, Games: appCfg.Games, Seed: appCfg.Seed}

	switch {
	case o.roster != "":
		var rc bot.TournamentConfig
		if o.roster == "-" {
			rc, err = bot.LoadRosterReader(cmd.InOrStdin(), cfg)
		} else {
			rc, err = bot.LoadRosterFile(o.roster, cfg)
		}
		if err != nil {
			return cfg, err
		}
		cfg = rc
	case o.strategies != "":
		entrants, err := bot.ParseEntrants(o.strategies)
		if err != nil {
			return cfg, err
		}
		cfg.Entrants = entrants
	default:
		return cfg, fmt.Errorf("one of --strategies or --roster is required")
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = o.name
	}
	if flags.Changed("pool") {
		cfg.Pool = o.pool
	}
	if flags.Changed("games") {
		cfg.Games = o.games
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle = o.shuffle
	}
	if flags.Changed("poll-director") {
		cfg.PollDirector = o.pollDirector
	}
	if o.archive == "" && o.redisURL == "" {
		cfg.DryRun = true
	}
	if o.archive == "" && appCfg.ArchiveEnabled() {
		o.archive, o.dialect = appCfg.DatabaseURL, appCfg.DatabaseDialect
		cfg.DryRun = false
	}
	if o.redisURL == "" && appCfg.CacheEnabled() {
		o.redisURL = appCfg.RedisURL
		cfg.DryRun = false
	}
	return cfg, nil
}

func archiveDialect(dsn, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return config.DialectPostgres
	}
	return config.DialectSQLite
}

func runTournament(cmd *cobra.Command, cfg bot.TournamentConfig, opts *runOptions, root *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var archive repository.ResultArchive
	if opts.archive != "" {
		store, err := sqlstore.Open(ctx, archiveDialect(opts.archive, opts.dialect), opts.archive)
		if err != nil {
			return err
		}
		defer store.Close()
		archive = sqlstore.NewArchiveRepo(store)
	}
	var board repository.Leaderboard
	if opts.redisURL != "" {
		client, err := redisrepo.NewClient(ctx, opts.redisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		board = client
	}

	var observers []bot.TournamentObserver
	if !opts.jsonOut {
		observers = append(observers, report.NewConsole(cmd.OutOrStdout(), opts.quiet))
	}
	if root.verbose {
		observers = append(observers, bot.NewLogObserver(log.Logger))
	}

	res, err := bot.RunTournament(ctx, cfg, archive, board, observers...)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if archive != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "archived as %s\n", res.ID)
	}
	return nil
}
