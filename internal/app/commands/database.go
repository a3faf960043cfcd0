package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"hcm/internal/platform/config"
	"hcm/internal/platform/crypto"
	"hcm/internal/platform/db"
)

func connect(ctx context.Context, conf *config.Config) (*pgxpool.Pool, error) {
	if conf.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	pool, err := db.Connect(ctx, conf.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	return pool, nil
}

func newMigrateCmd(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCmd(conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load reference data and demo employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			if conf.IsProduction() {
				return errors.New("seeding is disabled in production")
			}
			cipher, err := crypto.NewFieldCipherFromConfig(conf.FieldCipherKey, conf.FieldCipherIV)
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			if err := db.Seed(cmd.Context(), pool, cipher); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			slog.Info("seed data loaded")
			return nil
		},
	}
}
