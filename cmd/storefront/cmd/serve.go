package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/storefront/internal/config"
	"github.com/nfrund/storefront/internal/database"
	"github.com/nfrund/storefront/internal/logging"
	"github.com/nfrund/storefront/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Configuration is read from the environment and an
optional .env file. The product store is seeded on first start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}
		logger := logging.New()
		ctx := cmd.Context()

		repo, err := database.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open product store: %w", err)
		}
		products, err := database.LoadSeed(afero.NewOsFs(), cfg.SeedFile)
		if err != nil {
			repo.Close(ctx)
			return err
		}
		if _, err := database.Seed(ctx, repo, products); err != nil {
			repo.Close(ctx)
			return err
		}

		s, err := server.New(ctx, cfg, repo, server.WithLogger(logger))
		if err != nil {
			repo.Close(ctx)
			return err
		}
		return s.Start(ctx, cfg.HTTPAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides HTTP_ADDR)")
}
