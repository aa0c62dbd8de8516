package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections-bot/internal/config"
)

var (
	// Global flags
	cfgPath string
	pretty  bool
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "connections-bot",
	Short: "Plays the daily word-grouping puzzle with a language model",
	Long: `connections-bot asks a language model to sort sixteen words into four
groups of four and submits its guesses to the puzzle page, learning from
every rejected group until the puzzle is solved or the mistakes run out.

Results are exported to SQLite and can be browsed with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}

		if pretty {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			lvl = zerolog.InfoLevel
		}
		if verbose {
			lvl = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(lvl)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable console logs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(playCmd, batchCmd, serveCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}
