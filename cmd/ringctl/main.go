// cmd/ringctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"solitaire/internal/pkg/bootstrap"
	"solitaire/internal/pkg/database"
	"solitaire/internal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "ringctl",
	Short:         "Admin tooling for the ring shop services",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.Init("ringctl", logLevel, "console")
	},
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd, seedCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openDB 按服务相同的配置 (CONFIG_FILE 与环境变量) 打开数据库
func openDB() (*gorm.DB, func(), error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	c := cfg.Infra.MySQL
	db, err := database.Open(database.Options{DSN: c.DSN, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: c.ConnMaxLifetime})
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}
