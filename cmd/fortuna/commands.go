package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/fortuna/internal/cli"
	"github.com/terraincognita07/fortuna/internal/db"
	embeddedmigrations "github.com/terraincognita07/fortuna/migrations"
)

func newMigrateCommand() *cobra.Command {
	var dir string

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Long: `Apply pending SQL migrations for the configured driver.

The embedded migrations run on every start, so without --dir this reports
the current schema state. --dir points at a directory of NNN_name.sql files
to apply on top.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, cfg, err := openDatabase()
			if err != nil {
				return err
			}

			driver := normalizedDriver(cfg.DBDriver)
			var source fs.FS
			if dir != "" {
				source = os.DirFS(dir)
			} else if source, err = embeddedmigrations.ForDriver(driver); err != nil {
				return err
			}
			return cli.RunMigrateCommand(database, driver, source, cmd.OutOrStdout())
		},
	}
	command.Flags().StringVar(&dir, "dir", "", "directory with additional migration files")
	return command
}

func newResetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Replace an astrologer's password with a temporary one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := openDatabase()
			if err != nil {
				return err
			}
			return cli.RunResetPasswordCommand(cmd.Context(), database, args[0], cmd.OutOrStdout())
		},
	}
}

func newCreateAstrologerCommand() *cobra.Command {
	params := cli.CreateAstrologerParams{}

	command := &cobra.Command{
		Use:   "create-astrologer",
		Short: "Create an astrologer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(params.Email) == "" || strings.TrimSpace(params.Name) == "" {
				return errors.New("--email and --name are required")
			}
			if params.Password == "" {
				password, err := cli.PromptNewPassword(cmd.OutOrStdout(), os.Stdin)
				if err != nil {
					return err
				}
				params.Password = password
			}

			database, _, err := openDatabase()
			if err != nil {
				return err
			}
			return cli.RunCreateAstrologerCommand(cmd.Context(), database, params, cmd.OutOrStdout())
		},
	}
	command.Flags().StringVar(&params.Email, "email", "", "login email")
	command.Flags().StringVar(&params.Name, "name", "", "display name")
	command.Flags().StringVar(&params.Password, "password", "", "password; prompted for when empty")
	return command
}

func newSetActiveCommand(use string, active bool) *cobra.Command {
	short := "Allow an astrologer to sign in again"
	if !active {
		short = "Block an astrologer from signing in"
	}

	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := openDatabase()
			if err != nil {
				return err
			}
			return cli.RunSetActiveCommand(cmd.Context(), database, args[0], active, cmd.OutOrStdout())
		},
	}
}

func normalizedDriver(raw string) string {
	driver := strings.ToLower(strings.TrimSpace(raw))
	if driver == "" {
		return db.DriverSQLite
	}
	return driver
}
