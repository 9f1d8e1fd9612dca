package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"github.com/EnesGoktekin/detective-ai/internal/ai"
	"github.com/EnesGoktekin/detective-ai/internal/envstruct"
	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/logging"
	"github.com/EnesGoktekin/detective-ai/internal/pprofserver"
	"github.com/EnesGoktekin/detective-ai/internal/ratelimit"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
	"github.com/EnesGoktekin/detective-ai/internal/turns"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	cases          *repositories.CaseRepository
	sessions       *repositories.SessionRepository
	orchestrator   *turns.Orchestrator
}

type config struct {
	Addr         string        `env:"DETECTIVE_AI_ADDR" envDefault:"localhost:4000"`
	PprofPort    string        `env:"DETECTIVE_AI_PPROF_PORT" envDefault:":6060"`
	SQLiteURL    string        `env:"DETECTIVE_AI_SQLITE_URL" envDefault:"./detective-ai.sqlite"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	Model        string        `env:"DETECTIVE_AI_MODEL" envDefault:"gpt-4o-mini"`
	ChatCooldown time.Duration `env:"DETECTIVE_AI_CHAT_COOLDOWN" envDefault:"3s"`
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// Missing .env is fine in production where the environment is real.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// run wires the application and blocks until the server shuts down. Both
// dependencies that differ between production and tests come in as parameters:
// the logger and the environment lookup.
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse config")
	}

	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	go dbs.StartDatabaseOptimizer(ctx)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 30 * 24 * time.Hour

	limiter := ratelimit.NewLimiter(cfg.ChatCooldown)
	go limiter.StartSweeping(ctx)

	cases := repositories.NewCaseRepository(dbs, logger)
	sessions := repositories.NewSessionRepository(dbs, logger)
	completer := ai.NewClient(cfg.OpenAIAPIKey, cfg.Model)
	orchestrator := turns.NewOrchestrator(cases, sessions, completer, limiter, logger, turns.DefaultConfig())

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		cases:          cases,
		sessions:       sessions,
		orchestrator:   orchestrator,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
