package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections-bot/internal/board"
	"github.com/robalobadob/connections-bot/internal/config"
	"github.com/robalobadob/connections-bot/internal/model"
	"github.com/robalobadob/connections-bot/internal/player"
	"github.com/robalobadob/connections-bot/internal/policy"
	"github.com/robalobadob/connections-bot/internal/puzzle"
	"github.com/robalobadob/connections-bot/internal/results"
)

var (
	offline  bool
	strategy string
	shuffle  bool

	batchFrom int
	batchTo   int
)

// playCmd plays a single puzzle.
var playCmd = &cobra.Command{
	Use:   "play [puzzle-id]",
	Short: "Play one puzzle (default: today's)",
	Long: `Plays one puzzle turn by turn and prints the game-over summary.

With --offline the puzzle is judged from the local catalogue instead of the
puzzle page; offline games are not exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

// batchCmd plays a range of puzzles with one browser.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Play a range of puzzles, skipping ones already exported",
	Args:  cobra.NoArgs,
	RunE:  runBatch,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, batchCmd} {
		c.Flags().BoolVar(&offline, "offline", false, "judge against the local puzzle catalogue")
		c.Flags().StringVar(&strategy, "strategy", "", "guess policy: refining or single (default policy.strategy)")
		c.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle the board after a rejected group")
	}
	batchCmd.Flags().IntVar(&batchFrom, "from", 1, "first puzzle id")
	batchCmd.Flags().IntVar(&batchTo, "to", 0, "last puzzle id (default today's)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := puzzle.Today()
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid puzzle id %q", args[0])
		}
		id = n
	}

	newGuesser, err := guesserFactory(ctx)
	if err != nil {
		return err
	}
	open, closeAll, err := opener(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	b, closeBoard, err := open(ctx, id)
	if err != nil {
		return err
	}
	defer func() { _ = closeBoard() }()

	p := player.New(b, newGuesser())
	p.Rules = cfg.PolicyConfig().Rules()
	p.ShuffleOnFailure = shuffle || cfg.Policy.ShuffleOnFailure
	st, err := p.Play(ctx, id)
	if err != nil {
		return err
	}

	summary := results.Summarize(st, uuid.NewString(), time.Now())
	fmt.Fprintln(cmd.OutOrStdout(), summary.Message())
	if offline {
		return nil
	}

	store, err := results.Open(cfg.Results.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, summary)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	to := batchTo
	if to == 0 {
		to = puzzle.Today()
	}
	if batchFrom < 1 || to < batchFrom {
		return fmt.Errorf("invalid range %d..%d", batchFrom, to)
	}
	ids := make([]int, 0, to-batchFrom+1)
	for id := batchFrom; id <= to; id++ {
		ids = append(ids, id)
	}

	newGuesser, err := guesserFactory(ctx)
	if err != nil {
		return err
	}
	open, closeAll, err := opener(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	var store results.Store = results.NewMemoryStore()
	if !offline {
		db, err := results.Open(cfg.Results.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	batch := player.NewBatch(open, newGuesser, store)
	batch.Rules = cfg.PolicyConfig().Rules()
	batch.ShuffleOnFailure = shuffle || cfg.Policy.ShuffleOnFailure
	done, err := batch.Run(ctx, ids)
	won := 0
	for _, s := range done {
		if s.Status == "WON" {
			won++
		}
	}
	log.Info().Str("run", batch.RunID).Int("played", len(done)).Int("won", won).Msg("batch finished")
	return err
}

// guesserFactory returns a constructor for a fresh per-game guess policy.
func guesserFactory(ctx context.Context) (func() policy.Guesser, error) {
	name := cfg.Policy.Strategy
	if strategy != "" {
		name = strategy
	}
	proposer, err := model.NewGemini(ctx, cfg.GeminiConfig())
	if err != nil {
		return nil, err
	}
	log.Info().Str("model", proposer.Name()).Str("strategy", name).Msg("model ready")

	switch name {
	case config.StrategyRefining:
		pc := cfg.PolicyConfig()
		return func() policy.Guesser { return policy.NewRefining(proposer, pc) }, nil
	case config.StrategySingle:
		return func() policy.Guesser { return policy.NewSingleRequest(proposer) }, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// opener returns how boards are opened for this run and a func releasing
// the shared resources behind them.
func opener(ctx context.Context) (player.Opener, func(), error) {
	if offline {
		cat, err := catalogue()
		if err != nil {
			return nil, nil, err
		}
		open := func(_ context.Context, id int) (board.Board, func() error, error) {
			pz, ok := cat.Get(id)
			if !ok {
				return nil, nil, fmt.Errorf("puzzle %d is not in the local catalogue", id)
			}
			return board.NewMemory(pz), func() error { return nil }, nil
		}
		return open, func() {}, nil
	}

	browser, err := board.Launch(ctx, cfg.BrowserConfig())
	if err != nil {
		return nil, nil, err
	}
	open := func(ctx context.Context, id int) (board.Board, func() error, error) {
		r, err := browser.Open(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}
	closeAll := func() {
		if err := browser.Close(); err != nil {
			log.Warn().Err(err).Msg("close browser")
		}
	}
	return open, closeAll, nil
}

func catalogue() (*puzzle.Catalogue, error) {
	if cfg.PuzzlesFile != "" {
		return puzzle.Load(cfg.PuzzlesFile)
	}
	return puzzle.Default()
}
