package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	ring "solitaire/domain"
	"solitaire/internal/pkg/logger"
	"solitaire/internal/service/catalog/domain"
	"solitaire/internal/service/catalog/infrastructure"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default price table for every design",
	Long: `Seed writes the default 1.0/1.5/2.0/2.5ct prices (5000/7500/10000/12500)
for each design. Existing rows are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite existing prices")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()
	repo := infrastructure.NewGormPriceRepository(db)
	for _, d := range ring.AllDesigns() {
		_, err := repo.Get(ctx, d)
		switch {
		case err == nil && !seedForce:
			logger.Ctx(ctx).Info().Str("design", string(d)).Msg("price exists, skipped")
			continue
		case err != nil && !errors.Is(err, domain.ErrPriceNotFound):
			return err
		}
		table := domain.DefaultPriceTable(d)
		if err := repo.Upsert(ctx, &table); err != nil {
			return err
		}
		logger.Ctx(ctx).Info().Str("design", string(d)).Msg("price seeded")
	}
	return nil
}
