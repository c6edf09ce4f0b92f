// Package config loads process configuration from the environment, with an
// optional .env file alongside the binary's working directory.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration. Each binary layers its own flag
// overrides on top.
type Config struct {
	LogLevel  slog.Level
	Inbox     string // screenshot inbox directory for the watcher
	CSVPath   string // record CSV path
	AssetsDir string // simulator-tools checkout for the serve command
	Bundle    string // UI bundle directory inside the checkout
	SkillsDB  string // skill alias list (id -> names JSON)
	RunnersDB string // runner alias list (id -> names JSON)
	Port      int    // simulator server port; 0 picks an ephemeral one
}

// Load reads .env if present, then the environment, applying defaults for
// anything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LogLevel:  parseLevel(getenv("LOG_LEVEL", "info")),
		Inbox:     getenv("UMASCAN_INBOX", "data/inbox"),
		CSVPath:   getenv("UMASCAN_CSV", "data/runners.csv"),
		AssetsDir: getenv("UMASCAN_ASSETS", "external/uma-tools"),
		Bundle:    getenv("UMASCAN_BUNDLE", "umalator-global"),
		SkillsDB:  getenv("UMASCAN_SKILLS", "data/skillnames.json"),
		RunnersDB: getenv("UMASCAN_RUNNERS", "data/umas.json"),
		Port:      parseInt(getenv("UMASCAN_PORT", "0")),
	}
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.LogLevel,
	}))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
