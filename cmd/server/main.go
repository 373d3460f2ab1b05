package main

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"submithub/internal/api"
	"submithub/internal/config"
	dbstore "submithub/internal/db"
	"submithub/internal/middleware"
	"submithub/internal/services"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	sqlDB, err := openDB(cfg.SQLitePath)
	if err != nil {
		logger.Error("open sqlite", "err", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			logger.Warn("close sqlite", "err", cerr)
		}
	}()

	if err := dbstore.RunMigrations(sqlDB, cfg.MigrationsDir); err != nil {
		logger.Error("run migrations", "err", err)
		os.Exit(1)
	}

	store, err := dbstore.NewSQLiteStore(sqlDB, logger)
	if err != nil {
		logger.Error("init store", "err", err)
		os.Exit(1)
	}

	codec := middleware.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := services.NewAuthService(store, codec.Issue)
	recordSvc := services.NewRecordService(store, store)
	bindingSvc := services.NewBindingService(store)

	mux := http.NewServeMux()
	api.NewRouter(authSvc, recordSvc, bindingSvc, codec).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "name": "submithub API"})
	})

	logger.Info("submithub server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := "file:" + filepath.ToSlash(path) + "?cache=shared&_busy_timeout=5000"
	return sql.Open("sqlite3", dsn)
}
