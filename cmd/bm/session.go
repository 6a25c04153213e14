package main

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/auth"
	"github.com/nikbrunner/bmark/internal/config"
	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/i18n"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/storage"
)

// session holds everything a command needs: configuration, the signed-in
// local user, the backend and a dispatcher writing to it.
type session struct {
	cfg      *config.Config
	log      logger.Logger
	backend  *storage.SQLiteBackend
	auth     *auth.Local
	commands *dispatch.Dispatcher
	engine   *engine.Engine
}

func openSession(cmd *cobra.Command) (*session, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, errors.Wrap(err, "read --config")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	if err := i18n.Validate(); err != nil {
		return nil, err
	}
	lipgloss.SetHasDarkBackground(cfg.Theme == config.ThemeDark)

	notifier, err := newNotifier(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	backend, err := storage.NewSQLiteBackend(cfg.DBPath,
		storage.WithNotifier(notifier),
		storage.WithLogger(log.With(logger.String("component", "storage"))),
	)
	if err != nil {
		_ = notifier.Close()
		return nil, errors.Wrap(err, "open database")
	}

	local := auth.NewLocal()
	if err := local.SignIn(auth.Identity{UID: cfg.UserID, Name: cfg.UserName, Email: cfg.UserEmail}); err != nil {
		_ = backend.Close()
		return nil, errors.Wrap(err, "sign in")
	}

	log.Debug("session opened",
		logger.String("db", cfg.DBPath),
		logger.String("uid", cfg.UserID),
		logger.Bool("redis", cfg.RedisAddr != ""),
	)

	return &session{
		cfg:     cfg,
		log:     log,
		backend: backend,
		auth:    local,
		commands: dispatch.New(backend, local,
			dispatch.WithTimeout(cfg.CommandTimeout),
			dispatch.WithLogger(log.With(logger.String("component", "dispatch"))),
		),
		engine: engine.New(engine.Params{Locale: cfg.Locale()}),
	}, nil
}

// newNotifier shares change signals through Redis when an address is
// configured, so several running instances see each other's writes.
func newNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Notifier, error) {
	if cfg.RedisAddr == "" {
		return storage.NewLocalNotifier(), nil
	}
	n, err := storage.NewRedisNotifier(ctx, storage.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log.With(logger.String("component", "notifier")))
	if err != nil {
		return nil, err
	}
	return n, nil
}

// load fills the engine with the current collection of the signed-in user.
func (s *session) load(ctx context.Context) error {
	uid := s.auth.UID()
	bookmarks, err := s.backend.ListBookmarks(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "list bookmarks")
	}
	folders, err := s.backend.ListFolders(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "list folders")
	}
	s.engine.ApplyFolders(folders)
	s.engine.ApplyBookmarks(bookmarks)
	return nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.log.Warn("close database", logger.Error(err))
	}
	_ = s.log.Sync()
}

// withSession opens a session, loads the collection and runs fn.
func withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.load(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd, s, args)
	}
}
