// ABOUTME: Root command and shared wiring for notely subcommands.
// ABOUTME: Loads config, builds the logger and opens the configured stores.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/config"
	"github.com/harper/notely/internal/db"
	"github.com/harper/notely/internal/kvstore"
	"github.com/harper/notely/internal/logging"
	"github.com/harper/notely/internal/notes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "notely",
	Short: "Personal notes with a web UI",
	Long: `notely keeps per-user notes with favourites and search.

Run "notely serve" for the web interface, or use the subcommands to
inspect and export a user's notes from the terminal.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML)")
}

// app holds everything a subcommand needs. close releases the stores.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
	notes  *notes.Service
	auth   *auth.Provider
	sqlDB  *sql.DB
	closer []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		errs = append(errs, a.closer[i].Close())
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// openApp wires config, logging and storage. revoker may be nil for commands
// that never verify tokens.
func openApp(revoker func(*config.Config, *zap.Logger) auth.Revoker) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, level, err := logging.NewWithLevel(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, level: level}

	// Accounts always live in SQLite.
	a.sqlDB, err = db.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closer = append(a.closer, a.sqlDB)

	store, err := openNoteStore(cfg, a)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.notes = notes.NewService(store, notes.WithLogger(logger))

	var rev auth.Revoker = auth.NewMemoryRevoker()
	if revoker != nil {
		rev = revoker(cfg, logger)
	}
	a.auth = auth.NewProvider(db.NewUserStore(a.sqlDB), rev, auth.Options{
		SecretKey:    cfg.Auth.SecretKey,
		TokenTTL:     cfg.Auth.TokenTTL,
		BcryptCost:   cfg.Auth.BcryptCost,
		CookieSecure: cfg.Auth.CookieSecure,
	}, logger)

	logger.Debug("stores ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path),
	)
	return a, nil
}

func openNoteStore(cfg *config.Config, a *app) (notes.Store, error) {
	switch cfg.Store.Driver {
	case "badger":
		kv, err := kvstore.Open(cfg.Store.BadgerDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		a.closer = append(a.closer, kv)
		return kv, nil
	case "sqlite", "":
		return db.NewNoteStore(a.sqlDB), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// owner resolves the --email flag shared by the per-user commands.
func (a *app) owner(ctx context.Context, email string) (auth.Identity, error) {
	if email == "" {
		return auth.Identity{}, errors.New("--email is required")
	}
	id, err := a.auth.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return auth.Identity{}, fmt.Errorf("no account for %s", email)
		}
		return auth.Identity{}, err
	}
	return id, nil
}
