package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/fortuna/internal/config"
	"github.com/terraincognita07/fortuna/internal/db"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fortuna",
		Short:         "Client records for astrologers and tarot readers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newResetPasswordCommand(),
		newCreateAstrologerCommand(),
		newSetActiveCommand("activate", true),
		newSetActiveCommand("deactivate", false),
	)
	return root
}

// openDatabase loads FORTUNA_* settings for commands that only need storage.
func openDatabase() (*gorm.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, config.Config{}, err
	}

	database, err := db.Open(cfg.DatabaseOptions())
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("database init failed: %w", err)
	}
	return database, cfg, nil
}
