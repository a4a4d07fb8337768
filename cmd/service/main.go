package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/app"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/bootstrap"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/config"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/http/server"
	"github.com/edilberto3d/Alquiladora-Romero-Backed/internal/observability/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "ruta del config YAML (opcional)")
	envFile := flag.String("env-file", ".env", "archivo .env (opcional)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("no se pudo leer %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: cfg.App.Name, Version: version})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg, app.Options{Version: version})
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("cleanup", logger.Err(err))
		}
	}()

	// Primer administrador (solo si la base no tiene ninguno).
	if _, _, err := bootstrap.EnsureAdmin(ctx, c.Store.Accounts(), c.Services.Register, bootstrap.AdminConfig{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}); err != nil {
		lg.Warn("bootstrap de administrador falló", logger.Err(err))
	}

	err = server.Run(ctx, server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, c.Handler)
	if err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		return
	}
	lg.Info("bye")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
