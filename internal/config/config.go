// Package config loads configuration from an optional .env file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings.
type Config struct {
	SongsDir string

	ConfidenceThreshold float64
	StabilityThreshold  time.Duration
	DetectEvery         int
	HistorySize         int
	HistoryMin          int

	CameraURL          string
	CameraDir          string
	CameraFPS          float64
	CameraMaxRetries   int
	CameraRetryBackoff time.Duration

	ClassifierURL          string
	ClassifierTokenURL     string
	ClassifierClientID     string
	ClassifierClientSecret string

	AudioSampleRate int

	JournalPath    string
	JournalWorkers int
	JournalQueue   int

	RedisAddr    string
	RedisChannel string

	HTTPAddr string
	LogLevel slog.Level
}

// ClassifierAuth reports whether client-credentials auth is configured.
func (c Config) ClassifierAuth() bool {
	return c.ClassifierTokenURL != ""
}

// Load reads envFiles (".env" when none are given, missing files are
// ignored), then environment variables, applies defaults and validates.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	var p parser
	cfg := Config{
		SongsDir: getEnvString("SONGS_DIR", "songs"),

		ConfidenceThreshold: p.getFloat("CONFIDENCE_THRESHOLD", 0.3),
		StabilityThreshold:  p.getDuration("STABILITY_THRESHOLD", 3*time.Second),
		DetectEvery:         p.getInt("DETECT_EVERY", 3),
		HistorySize:         p.getInt("HISTORY_SIZE", 10),
		HistoryMin:          p.getInt("HISTORY_MIN", 3),

		CameraURL:          getEnvString("CAMERA_URL", ""),
		CameraDir:          getEnvString("CAMERA_DIR", ""),
		CameraFPS:          p.getFloat("CAMERA_FPS", 15),
		CameraMaxRetries:   p.getInt("CAMERA_MAX_RETRIES", 3),
		CameraRetryBackoff: time.Duration(p.getInt("CAMERA_RETRY_BACKOFF_MS", 200)) * time.Millisecond,

		ClassifierURL:          getEnvString("CLASSIFIER_URL", "http://localhost:5005"),
		ClassifierTokenURL:     getEnvString("CLASSIFIER_TOKEN_URL", ""),
		ClassifierClientID:     getEnvString("CLASSIFIER_CLIENT_ID", ""),
		ClassifierClientSecret: getEnvString("CLASSIFIER_CLIENT_SECRET", ""),

		AudioSampleRate: p.getInt("AUDIO_SAMPLE_RATE", 44100),

		JournalPath:    getEnvString("JOURNAL_PATH", "moodtrack.db"),
		JournalWorkers: p.getInt("JOURNAL_WORKERS", 1),
		JournalQueue:   p.getInt("JOURNAL_QUEUE", 64),

		RedisAddr:    getEnvString("REDIS_ADDR", ""),
		RedisChannel: getEnvString("REDIS_CHANNEL", "moodtrack:events"),

		HTTPAddr: getEnvString("HTTP_ADDR", "127.0.0.1:8090"),
		LogLevel: p.getLevel("LOG_LEVEL", slog.LevelInfo),
	}
	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(p.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and mutually exclusive settings.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.SongsDir != "", "SONGS_DIR is required")
	check(c.ConfidenceThreshold >= 0 && c.ConfidenceThreshold <= 1,
		"CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.ConfidenceThreshold)
	check(c.StabilityThreshold >= 0, "STABILITY_THRESHOLD must not be negative")
	check(c.DetectEvery >= 1, "DETECT_EVERY must be at least 1, got %d", c.DetectEvery)
	check(c.HistorySize >= 1, "HISTORY_SIZE must be at least 1, got %d", c.HistorySize)
	check(c.HistoryMin >= 1 && c.HistoryMin <= c.HistorySize,
		"HISTORY_MIN must be within [1,HISTORY_SIZE], got %d", c.HistoryMin)
	check((c.CameraURL == "") != (c.CameraDir == ""), "exactly one of CAMERA_URL and CAMERA_DIR must be set")
	check(c.CameraFPS >= 0, "CAMERA_FPS must not be negative")
	check(c.CameraMaxRetries >= 1, "CAMERA_MAX_RETRIES must be at least 1, got %d", c.CameraMaxRetries)
	check(c.CameraRetryBackoff >= 0, "CAMERA_RETRY_BACKOFF_MS must not be negative")
	check(c.ClassifierURL != "", "CLASSIFIER_URL is required")
	authSet := c.ClassifierTokenURL != "" || c.ClassifierClientID != "" || c.ClassifierClientSecret != ""
	authComplete := c.ClassifierTokenURL != "" && c.ClassifierClientID != "" && c.ClassifierClientSecret != ""
	check(!authSet || authComplete,
		"CLASSIFIER_TOKEN_URL, CLASSIFIER_CLIENT_ID and CLASSIFIER_CLIENT_SECRET must be set together")
	check(c.AudioSampleRate > 0, "AUDIO_SAMPLE_RATE must be positive, got %d", c.AudioSampleRate)
	check(c.JournalWorkers >= 1, "JOURNAL_WORKERS must be at least 1, got %d", c.JournalWorkers)
	check(c.JournalQueue >= 1, "JOURNAL_QUEUE must be at least 1, got %d", c.JournalQueue)

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// getEnvString returns def only when key is unset, so KEY= disables an
// optional component.
func getEnvString(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return def
}

// parser collects malformed values instead of silently using defaults.
type parser struct {
	errs []error
}

func (p *parser) getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, val))
		return def
	}
	return parsed
}

func (p *parser) getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, val))
		return def
	}
	return parsed
}

// getDuration accepts Go durations ("1500ms") or bare seconds ("1.5").
func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, val))
	return def
}

func (p *parser) getLevel(key string, def slog.Level) slog.Level {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(val)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a log level", key, val))
		return def
	}
	return lvl
}
