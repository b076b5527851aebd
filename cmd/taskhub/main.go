package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/taskhub/internal/config"
	"github.com/dropDatabas3/taskhub/internal/http/server"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"

	// Registra los adapters de store vía init().
	_ "github.com/dropDatabas3/taskhub/internal/store/adapters/dal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "taskhub:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al YAML de configuración (opcional)")
	flag.Parse()

	// .env es opcional; las variables del entorno tienen prioridad.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		log.Error("startup failed", logger.Err(err))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("cleanup error", logger.Err(err))
		}
	}()

	srv := server.New(cfg.Server.Addr, app.Handler, cfg.ReadTimeout(), cfg.WriteTimeout())
	if err := server.Run(ctx, srv, cfg.ShutdownTimeout()); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
