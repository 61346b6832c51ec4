package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/storefront/internal/config"
	"github.com/nfrund/storefront/internal/database"
	"github.com/nfrund/storefront/internal/logging"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample products into an empty product store",
	Long: `Load sample products into the configured product store. Nothing is
inserted when the store already holds products.

Examples:
  storefront seed                        # built-in sample catalogue
  storefront seed --file products.yaml   # products from a YAML or JSON file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logging.New()
		if seedFile != "" {
			cfg.SeedFile = seedFile
		}
		ctx := cmd.Context()

		products, err := database.LoadSeed(afero.NewOsFs(), cfg.SeedFile)
		if err != nil {
			return err
		}
		repo, err := database.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open product store: %w", err)
		}
		defer repo.Close(ctx)

		n, err := database.Seed(ctx, repo, products)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Product store already populated, nothing to do")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (overrides SEED_FILE)")
}
