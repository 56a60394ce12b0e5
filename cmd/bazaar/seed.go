package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bazaar/internal/app"
)

var (
	seedCount int
	seedValue uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty catalog with sample listings",
	Long: `Fill an empty catalog with generated listings plus a fixed set of
featured ones. A catalog that already has listings is left alone.

The same --seed always generates the same titles.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", app.DefaultSeedCount, "Number of generated listings")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 1, "Random seed for generated listings")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount < 0 {
		return fmt.Errorf("invalid --count %d: must not be negative", seedCount)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	inserted, err := a.Seed(cmd.Context(), seedCount, seedValue)
	if err != nil {
		return err
	}
	if inserted == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s already has listings, nothing to do\n", a.Config.Catalog.Path)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d listings into %s\n", inserted, a.Config.Catalog.Path)
	return nil
}
