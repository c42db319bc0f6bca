package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"solitaire/internal/pkg/logger"
	account "solitaire/internal/service/account/infrastructure"
	catalog "solitaire/internal/service/catalog/infrastructure"
	order "solitaire/internal/service/order/infrastructure"
	promotion "solitaire/internal/service/promotion/infrastructure"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every service's tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

// migrations 按服务列出需要迁移的表
var migrations = []struct {
	service string
	models  func() []any
}{
	{"catalog", catalog.Models},
	{"promotion", promotion.Models},
	{"order", order.Models},
	{"account", account.Models},
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()
	for _, m := range migrations {
		models := m.models()
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			return errors.Wrapf(err, "migrate %s tables", m.service)
		}
		logger.Ctx(ctx).Info().Str("service", m.service).Int("tables", len(models)).Msg("migrated")
	}
	return nil
}
