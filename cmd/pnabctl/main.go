// Command pnabctl administers the PNAB engine: schema migrations, notice
// seeding, account creation and offline checks of the scoring and
// checklist rules.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pnab-cultura/engine/internal/repository"
	"github.com/pnab-cultura/engine/pkg/config"
	"github.com/pnab-cultura/engine/pkg/database"
	"github.com/pnab-cultura/engine/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "pnabctl",
		Short:         "Administer the PNAB proposal engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logger.Init(logLevel, "console")
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		migrateCmd(),
		noticesCmd(),
		checklistCmd(),
		scoreCmd(),
		recomputeCmd(),
		usersCmd(),
	)
	return cmd
}

// openDB connects using the service configuration (env, .env or config.yaml).
func openDB(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.OpenPostgres(ctx, cfg.DatabaseURL, database.Options{MaxRetries: 2, MaxConns: 2})
}

func openStore(ctx context.Context) (repository.Store, error) {
	db, err := openDB(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations completed")
			return nil
		},
	}
}
