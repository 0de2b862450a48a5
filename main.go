package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gameforge/gameforge/internal/config"
	"github.com/gameforge/gameforge/internal/repository/sqlite"
	"github.com/gameforge/gameforge/internal/service"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gameforge",
		Short: "GameForge account and session service",
		Long: `GameForge serves registration, login and session resolution for the
GameForge web client. Sessions are opaque tokens stored in SQLite and
carried in an HttpOnly cookie.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		reapCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setupLogger installs the process-wide slog logger: text to stdout for
// humans, JSON to stderr for collectors.
func setupLogger(level slog.Level) {
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
}

// loadConfig reads the environment and applies a --db override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.DatabasePath, _ = cmd.Flags().GetString("db")
	}
	setupLogger(cfg.LogLevel)
	return cfg, nil
}

// openDB opens and migrates the database.
func openDB(ctx context.Context, path string) (*sqlite.DB, error) {
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied", "path", path)
	return db, nil
}

// newAuthService wires the auth service from config and an open database.
func newAuthService(cfg config.Config, db *sqlite.DB) *service.AuthService {
	sessions := service.NewSessionManager(db.Sessions(), service.SessionPolicy{
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
	}, nil)
	return service.NewAuthService(db.Users(), sessions, service.NewPasswordHasher(cfg.BcryptCost))
}

func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "SQLite database path (overrides DATABASE_PATH)")
}
