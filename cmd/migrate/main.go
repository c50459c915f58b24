package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)    apply pending SQL migrations
  seed-admin   create the admin user from ADMIN_USERNAME / ADMIN_PASSWORD`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		runMigrations(ctx, pool, findMigrationDir())
	case "seed-admin":
		seedAdmin(ctx, pool)
	default:
		usage()
	}
}

// findMigrationDir locates the migrations directory relative to common
// working directories (repo root, cmd/migrate).
func findMigrationDir() string {
	for _, dir := range []string{"migrations", "../migrations", "../../migrations"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	logging.Fatal("migrations directory not found")
	return ""
}

// runMigrations applies each not-yet-applied *.sql file in name order, each
// in its own transaction recorded in schema_migrations.
func runMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		logging.Fatal("create schema_migrations failed", "error", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		logging.Fatal("list migrations failed", "error", err)
	}
	sort.Strings(files)

	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists); err != nil {
			logging.Fatal("check migration failed", "version", version, "error", err)
		}
		if exists {
			continue
		}

		sql, err := os.ReadFile(file)
		if err != nil {
			logging.Fatal("read migration failed", "version", version, "error", err)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			logging.Fatal("begin tx failed", "version", version, "error", err)
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			logging.Fatal("apply migration failed", "version", version, "error", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			logging.Fatal("record migration failed", "version", version, "error", err)
		}
		if err := tx.Commit(ctx); err != nil {
			logging.Fatal("commit migration failed", "version", version, "error", err)
		}
		slog.Info("applied migration", "version", version)
	}
	slog.Info("migrations up to date")
}

// seedAdmin creates (or rotates the password of) the single admin identity.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		logging.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logging.Fatal("hash password failed", "error", err)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO admins (id, username, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.NewString(), username, string(hash)); err != nil {
		logging.Fatal("seed admin failed", "error", err)
	}
	slog.Info("admin seeded", "username", username)
}
