package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"strconv"
	"time"

	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/dashboard"
	apphttp "finanzas/internal/http"
	"finanzas/internal/identity"
	"finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
)

func main() {
	importPath := flag.String("import", "", "JSON file of records to load into the sqlite backend before serving")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp, (*config.Config).ValidateAuth)
	loc, _ := cfg.Location()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	if *importPath != "" {
		n, err := cli.ImportFile(context.Background(), res.Import, *importPath)
		if err != nil {
			logger.Error("Import failed", log.FieldError, err, "path", *importPath)
			os.Exit(1)
		}
		logger.Info("Imported records", log.FieldCount, n, "path", *importPath)
	}

	boardsCtx, stopBoards := context.WithCancel(context.Background())
	boards := dashboard.NewManager(boardsCtx, res.Service, dashboard.Options{Location: loc})

	srv := apphttp.NewServer(apphttp.Config{
		Addr:      ":" + cfg.Port,
		PageSize:  cfg.PageSize,
		Location:  loc,
		RateLimit: ratelimit.DefaultConfig(),
	}, apphttp.Deps{
		Writer:   res.Service,
		Boards:   boards,
		Verifier: identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Logger:   logger.WithComponent(log.ComponentHTTP),
		Ready:    res.Ping,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		boards.Close()
		stopBoards()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting finanzas server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"page_size", strconv.Itoa(cfg.PageSize))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
