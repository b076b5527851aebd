package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/taskhub/internal/config"
	"github.com/dropDatabas3/taskhub/internal/http/server"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
	"github.com/dropDatabas3/taskhub/internal/store"
	"github.com/dropDatabas3/taskhub/internal/store/adapters/pg"

	_ "github.com/dropDatabas3/taskhub/internal/store/adapters/dal"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var (
		configPath = os.Getenv("CONFIG_PATH")
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "taskhubctl",
		Short:         "Tareas operativas de TaskHub (seed, migraciones, chequeos)",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "taskhubctl"})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta al YAML de configuración (env CONFIG_PATH)")

	withStore := func(fn func(ctx context.Context, conn store.AdapterConnection) error) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		conn, err := server.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(ctx, conn)
	}

	seedCmd := &cobra.Command{Use: "seed", Short: "Carga datos de sistema"}
	seedCmd.AddCommand(&cobra.Command{
		Use:   "roles",
		Short: "Crea o actualiza los roles Owner, Admin y Member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, conn store.AdapterConnection) error {
				report, err := provisioning.SeedRoles(ctx, conn.Roles())
				if err != nil {
					return err
				}
				names := make([]string, 0, len(report))
				for name := range report {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", name, report[name])
				}
				return nil
			})
		},
	})

	var downSteps int
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de postgres",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := root.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requires storage.driver=postgres (got %q)", cfg.Storage.Driver)
			}
			return nil
		},
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica todas las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := pg.MigrateUp(cfg.Storage.Postgres.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	})
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := pg.MigrateDown(cfg.Storage.Postgres.DSN, downSteps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
	downCmd.Flags().IntVar(&downSteps, "steps", 1, "cantidad de migraciones a revertir")
	migrateCmd.AddCommand(downCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verifica conexión al store y existencia del rol Owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, conn store.AdapterConnection) error {
				if err := conn.Ping(ctx); err != nil {
					return fmt.Errorf("ping %s: %w", conn.Name(), err)
				}
				if err := provisioning.CheckPreconditions(ctx, conn.Roles()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ok, Owner role present\n", conn.Name())
				return nil
			})
		},
	}

	root.AddCommand(seedCmd, migrateCmd, checkCmd)
	return root
}
