package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/publish"
	"github.com/dgallion1/specxref/internal/sectionnum"
	"github.com/dgallion1/specxref/internal/toc"
)

type Config struct {
	Port string

	// Auth; an empty key disables it
	APIKey string

	// Numbering
	NavigationFile string
	ExtensionsRoot string
	ExternalIcon   string
	SelfLinkGlyph  string
	TocDuplicates  string

	// Backlinks
	ReferenceDisclosure int

	// Diagnostics
	DiagnosticsDir string
	StatsWindow    time.Duration
	LogLevel       string

	// Request limits
	MaxPageBytes int64
}

// LoadDotEnv loads variables from file into the environment without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(file string) error {
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func Load() Config {
	def := sectionnum.DefaultConfig()
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("SPECXREF_API_KEY"),

		NavigationFile: os.Getenv("NAVIGATION_FILE"),
		ExtensionsRoot: envOr("EXTENSIONS_ROOT", def.ExtensionsRoot),
		ExternalIcon:   envOr("EXTERNAL_ICON", def.ExternalIcon),
		SelfLinkGlyph:  envOr("SELF_LINK_GLYPH", def.SelfLinkGlyph),
		TocDuplicates:  envOr("TOC_DUPLICATES", string(toc.Reject)),

		ReferenceDisclosure: envInt("REFERENCE_DISCLOSURE", backlinks.DefaultDisclosure),

		DiagnosticsDir: envOr("DIAGNOSTICS_DIR", DefaultDiagnosticsDir()),
		StatsWindow:    envDuration("STATS_WINDOW", time.Hour),
		LogLevel:       envOr("LOG_LEVEL", "info"),

		MaxPageBytes: envInt64("MAX_PAGE_BYTES", 10<<20),
	}

	if cfg.ReferenceDisclosure <= 0 {
		cfg.ReferenceDisclosure = backlinks.DefaultDisclosure
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}
	if cfg.MaxPageBytes <= 0 {
		cfg.MaxPageBytes = 10 << 20
	}

	return cfg
}

// DiagnosticsOff as DIAGNOSTICS_DIR disables source dumps.
const DiagnosticsOff = "off"

// DefaultDiagnosticsDir is where failing sources are dumped when DIAGNOSTICS_DIR is unset.
func DefaultDiagnosticsDir() string {
	return filepath.Join(os.TempDir(), "specxref-diagnostics")
}

func (c Config) Validate() error {
	if _, err := toc.ParseDuplicatePolicy(c.TocDuplicates); err != nil {
		return fmt.Errorf("TOC_DUPLICATES: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.NavigationFile != "" {
		if _, err := os.Stat(c.NavigationFile); err != nil {
			return fmt.Errorf("NAVIGATION_FILE: %w", err)
		}
	}
	return nil
}

// Run derives the publication run settings.
func (c Config) Run() publish.Config {
	policy, _ := toc.ParseDuplicatePolicy(c.TocDuplicates)
	var dumper failure.Dumper = failure.NopDumper{}
	if c.DiagnosticsDir != "" && c.DiagnosticsDir != DiagnosticsOff {
		dumper = failure.DirDumper{Dir: c.DiagnosticsDir}
	}
	num := sectionnum.DefaultConfig()
	if c.ExtensionsRoot != "" {
		num.ExtensionsRoot = c.ExtensionsRoot
	}
	if c.ExternalIcon != "" {
		num.ExternalIcon = c.ExternalIcon
	}
	if c.SelfLinkGlyph != "" {
		num.SelfLinkGlyph = c.SelfLinkGlyph
	}
	return publish.Config{
		Numbering:   num,
		Duplicates:  policy,
		Disclosure:  c.ReferenceDisclosure,
		StatsWindow: c.StatsWindow,
		Dumper:      dumper,
	}
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
