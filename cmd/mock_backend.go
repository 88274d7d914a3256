package cmd

import (
	"fmt"
	"net/http"

	"github.com/frahmantamala/resource-dashboard/internal/mockbackend"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Start the in-memory REST backend",
	Long:  `Serve a seeded in-memory implementation of the backend API for local development`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.MockBackend
		log := logger.L().With("component", "mock-backend")

		handler, _, err := mockbackend.New(
			mockbackend.NewStore(),
			mockbackend.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
			cfg.BCryptCost, cfg.Seed, log)
		if err != nil {
			return fmt.Errorf("failed to build mock backend: %w", err)
		}

		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("Starting mock backend", "address", addr, "api", mockbackend.APIPrefix, "seeded", cfg.Seed)

		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: appConfig.Server.ReadHeaderTimeout,
			ReadTimeout:       appConfig.Server.ReadTimeout,
			WriteTimeout:      appConfig.Server.WriteTimeout,
			IdleTimeout:       appConfig.Server.IdleTimeout,
		}
		return serve(server, log)
	},
}
