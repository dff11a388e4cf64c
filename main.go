package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/dzoniops/booking-service/config"
	"github.com/dzoniops/booking-service/db"
	"github.com/dzoniops/booking-service/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "booking-service",
		Short:         "Stay availability and booking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		TokenCmd(),
		ClientCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, log.Logger, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, utils.NewLogger(os.Stderr, cfg.LogLevel), nil
}

func openDB(cfg *config.Config, logger log.Logger) (*gorm.DB, error) {
	return db.Open(db.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DSN,
		Logger: log.With(logger, "component", "db"),
	})
}
