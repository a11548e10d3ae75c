package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/moodtrack/internal/adapters/audio"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/camera"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/catalog"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/classifier"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/console"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/redis"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/rest"
	"github.com/ewilliams-labs/moodtrack/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodtrack/internal/config"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
	"github.com/ewilliams-labs/moodtrack/internal/core/services"
	"github.com/ewilliams-labs/moodtrack/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run acquires every resource, runs the session and releases what it
// acquired on every return path.
func run() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters. An acquisition failure aborts after releasing
	// whatever was acquired before it.
	tracks, err := catalog.Load(cfg.SongsDir, logger)
	if err != nil {
		return fmt.Errorf("failed to load song catalog: %w", err)
	}
	if tracks.Total() == 0 {
		logger.Warn("no playable songs found, music will stay silent", "dir", cfg.SongsDir)
	}

	frames, err := openFrames(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	defer frames.Close()

	player, err := audio.NewPlayer(cfg.AudioSampleRate)
	if err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	defer player.Close()

	classifierOpts := []classifier.Option{}
	if cfg.ClassifierAuth() {
		classifierOpts = append(classifierOpts,
			classifier.WithClientCredentials(cfg.ClassifierTokenURL, cfg.ClassifierClientID, cfg.ClassifierClientSecret))
	}
	detector := classifier.NewClient(cfg.ClassifierURL, classifierOpts...)

	var journal ports.SessionJournal
	if cfg.JournalPath != "" {
		db, err := sqlite.NewAdapter(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to initialize journal: %w", err)
		}
		defer db.Close()
		journal = db
	}

	var publisher ports.EventPublisher
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pub, err := redis.NewPublisher(pingCtx, cfg.RedisAddr, cfg.RedisChannel)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		defer pub.Close()
		publisher = pub
	}

	pool := worker.NewPool(journal, publisher, cfg.JournalQueue, worker.WithLogger(logger))
	pool.Start(cfg.JournalWorkers)
	defer pool.Stop()

	// 3. Feedback surfaces
	sessionID := uuid.NewString()
	displays := services.Displays{console.New(os.Stdout, os.Stdin)}
	if cfg.HTTPAddr != "" {
		handler := rest.NewHandler(sessionID, journal)
		srv := rest.NewServer(cfg.HTTPAddr, handler, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("status server shutdown", "error", err)
			}
		}()
		displays = append(displays, handler)
	}

	// 4. Core
	selector := services.NewSelector(tracks, player, services.WithSelectorLogger(logger))
	session := services.NewSession(frames, detector, selector, services.SessionConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		StabilityThreshold:  cfg.StabilityThreshold,
		DetectEvery:         cfg.DetectEvery,
		HistorySize:         cfg.HistorySize,
		HistoryMin:          cfg.HistoryMin,
	},
		services.WithSessionID(sessionID),
		services.WithDisplay(displays),
		services.WithEvents(pool),
		services.WithSessionLogger(logger),
	)

	log.Println("------------------------------------------------")
	log.Printf("🎶 moodtrack session %s started, type q + Enter to quit", sessionID)
	log.Println("------------------------------------------------")

	if err := session.Run(ctx); err != nil {
		return err
	}
	logger.Info("session ended", "session", sessionID)
	return nil
}

func openFrames(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.FrameSource, error) {
	if cfg.CameraDir != "" {
		return camera.OpenDir(cfg.CameraDir)
	}
	src := camera.NewSnapshotSource(cfg.CameraURL, cfg.CameraFPS,
		camera.WithRetry(cfg.CameraMaxRetries, cfg.CameraRetryBackoff),
		camera.WithLogger(logger),
	)
	if err := src.Open(ctx); err != nil {
		return nil, err
	}
	return src, nil
}
