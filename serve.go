package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/connections-bot/internal/config"
	"github.com/robalobadob/connections-bot/internal/httpserver"
	"github.com/robalobadob/connections-bot/internal/results"
)

var servePort string

// serveCmd runs the read-only results API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exported results over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := results.Open(cfg.Results.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		port := cfg.Server.Port
		if servePort != "" {
			port = servePort
		}
		if cfg.Server.JWTSecret == config.DevJWTSecret {
			log.Warn().Msg("JWT_SECRET is the development default; set it before exposing the API")
		}
		log.Info().Str("port", port).Str("dsn", cfg.Results.DSN).Msg("starting results API")
		return httpserver.New(store, cfg.Server.JWTSecret).Start(cmd.Context(), ":"+port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default server.port)")
}
