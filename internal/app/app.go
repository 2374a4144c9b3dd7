package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"ActivityFeed/internal/config"
	"ActivityFeed/internal/infrastructure/storage"
	"ActivityFeed/internal/logging"
	"ActivityFeed/internal/ports"
	"ActivityFeed/internal/ranking"
	"ActivityFeed/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg  config.Config
	feed *usecase.Feed
	db   *sql.DB
}

// Open connects to Postgres and builds the application on top of it.
func Open(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := New(cfg, baseLogger, storage.NewPostgresRepository(db))
	a.db = db
	return a, nil
}

// New builds the application over any store implementation.
func New(cfg config.Config, baseLogger *slog.Logger, store ports.Store) *Application {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, nil)
	}

	engine := ranking.NewEngine(
		ports.SourcesFrom(store),
		ranking.WithWeights(cfg.Ranking.Weights()),
		ranking.WithLogger(baseLogger.With("component", "ranking")),
	)

	feed := usecase.NewFeed(usecase.FeedDeps{
		Ranker:     engine,
		Events:     store,
		Moderation: store,
		Engagement: store,
		Decisions:  store,
		Defaults: usecase.Options{
			Limit:     cfg.Feed.Limit,
			ScanLimit: cfg.Feed.ScanLimit,
			Mode:      cfg.Feed.Mode(),
		},
		Logger: baseLogger.With("component", "feed"),
	})
	return &Application{cfg: cfg, feed: feed}
}

// Feed exposes the feed session façade.
func (a *Application) Feed() *usecase.Feed {
	return a.feed
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
