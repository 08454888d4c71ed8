package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/adapter/repository/postgres"
	"github.com/rpfaria/fundpulse-backend/internal/adapter/rest"
	"github.com/rpfaria/fundpulse-backend/internal/config"
	"github.com/rpfaria/fundpulse-backend/internal/usecase/jobrecovery"
	"github.com/rpfaria/fundpulse-backend/internal/usecase/jobrunner"
	"github.com/rpfaria/fundpulse-backend/internal/usecase/standinginstruction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := newLogger(cfg.LogLevel)

	// 1. Database
	db, err := postgres.NewDB(cfg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 2. Repositories and transfer executor
	instructionRepo := postgres.NewInstructionRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	transferExecutor := postgres.NewTransferExecutor(db)
	jobRunRepo := postgres.NewJobRunRepository(db, cfg.StuckJobAfter)

	// 3. Use cases
	attemptRunner := standinginstruction.NewAttemptRunner(transferExecutor, log)
	processor := standinginstruction.NewProcessor(instructionRepo, historyRepo, attemptRunner, log)

	runner := jobrunner.NewRunner(jobRunRepo, log)
	runner.Register(standinginstruction.JobName, func(ctx context.Context, asOfDate time.Time) error {
		_, err := processor.Run(ctx, asOfDate)
		return err
	})

	recovery := jobrecovery.NewService(jobRunRepo, runner, log)

	// 4. HTTP server
	server := rest.New(cfg.Port, log, runner, recovery, transferExecutor, historyRepo)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	waitForShutdown(server, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *rest.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger()
}
