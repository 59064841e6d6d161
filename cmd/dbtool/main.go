package main

import (
	"bevforge-delivery/internal/adapters/repositories"
	"bevforge-delivery/internal/config"
	"bevforge-delivery/internal/platform/db"
	"bevforge-delivery/internal/platform/obs"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the delivery database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			if c.DBDriver == config.DriverMemory {
				return fmt.Errorf("dbtool needs DB_DRIVER=%s or %s", config.DriverSQLite, config.DriverPostgres)
			}
			logger, err := obs.NewLogger(c.LogLevel)
			if err != nil {
				return err
			}
			obs.SetLogger(logger)
			cfg = c
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(conn *sql.DB) error {
				if err := repositories.Migrate(conn, cfg.DBDriver); err != nil {
					return err
				}
				obs.L().Info("schema ready", zap.String("driver", cfg.DBDriver))
				return nil
			})
		},
	})

	var seedPath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then insert trucks and staged containers from a seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedPath == "" {
				seedPath = cfg.SeedPath
			}
			return withDB(cfg, func(conn *sql.DB) error {
				if err := repositories.Migrate(conn, cfg.DBDriver); err != nil {
					return err
				}
				store := repositories.NewSQLStore(conn, cfg.DBDriver)
				trucks, containers, err := repositories.Seed(cmd.Context(), store, seedPath)
				if err != nil {
					return err
				}
				obs.L().Info("seeding complete",
					zap.String("path", seedPath),
					zap.Int("trucks", trucks),
					zap.Int("containers", containers))
				return nil
			})
		},
	}
	seedCmd.Flags().StringVar(&seedPath, "file", "", "seed file (.yaml or .json); defaults to SEED_PATH")
	root.AddCommand(seedCmd)

	return root
}

func withDB(cfg *config.Config, fn func(*sql.DB) error) error {
	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			obs.L().Warn("close database", zap.Error(err))
		}
	}()
	return fn(conn)
}
