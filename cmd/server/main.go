package main

import (
	"database/sql"
	"net/http"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/shiftpulse/shiftpulse/internal/api"
	"github.com/shiftpulse/shiftpulse/internal/config"
	"github.com/shiftpulse/shiftpulse/internal/db"
	"github.com/shiftpulse/shiftpulse/internal/middleware"
	"github.com/shiftpulse/shiftpulse/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := services.ValidateCategories(services.Categories, services.DriverKeys); err != nil {
		logger.Fatal("category table invalid", zap.Error(err))
	}

	conn, err := sql.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		logger.Fatal("open sqlite", zap.Error(err))
	}
	defer func() { _ = conn.Close() }()
	if err := db.RunMigrations(conn, cfg.MigrationsDir); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
	store, err := db.NewSQLiteStore(conn, logger)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}

	var cipher *services.IdentityCipher
	if key, err := cfg.EscrowKeyBytes(); err != nil {
		logger.Fatal("escrow key", zap.Error(err))
	} else if key != nil {
		if cipher, err = services.NewIdentityCipher(key); err != nil {
			logger.Fatal("escrow cipher", zap.Error(err))
		}
	} else {
		logger.Warn("identity escrow disabled: no escrow key configured")
	}

	auth := middleware.NewAuth(cfg.JWTSecret)
	access := services.NewAccessService(store)
	authSvc := services.NewAuthService(store, auth.SignToken)
	directory := services.NewDirectoryService(store, access)
	ingest := services.NewIngestService(store, services.NewKeywordClassifier(), cipher)
	reports := services.NewReportService(store, access, services.NewMemoryTTLStore())
	reveal := services.NewRevealService(store, cipher)

	server := api.NewServer(logger, auth, authSvc, directory, ingest, reports, reveal)

	logger.Info("shiftpulse server listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, server.Routes()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
