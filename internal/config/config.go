// Package config loads the run configuration from the environment,
// with an optional YAML rules file for the matching heuristics. Every
// value, including the execute toggle, is read exactly once here;
// nothing re-polls the environment mid-run.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/mappers"
)

type Config struct {
	// Store
	StoreDriver string // "sqlite" | "postgres"
	SQLitePath  string
	PostgresDSN string

	// Execute gates every write. Default is dry-run.
	Execute bool

	// Reports
	ReportDir string

	// Logging
	LogLevel  string
	LogFormat string

	Rules Rules
	SFTP  SFTP
}

// Rules are the tunable matching heuristics. A YAML file at RULES_PATH
// replaces them wholesale.
type Rules struct {
	Locations []mappers.LocationRule `yaml:"locations"`

	// PartialNameMinLen bounds the longer operand of the partial-name
	// tier; zero means the engine default.
	PartialNameMinLen int `yaml:"partial_name_min_len"`
}

// SFTP configures the optional report hand-off.
type SFTP struct {
	Upload    bool
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string
}

// Load reads and validates the configuration. A broken store
// configuration is fatal here, before any store connection or write is
// attempted.
func Load() (Config, error) {
	cfg := Config{
		StoreDriver: getenv("STORE_DRIVER", "sqlite"),
		SQLitePath:  getenv("SQLITE_PATH", "catalog.db"),
		PostgresDSN: os.Getenv("PG_DSN"),
		Execute:     loadExecute(),
		ReportDir:   getenv("REPORT_DIR", "out"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
		Rules: Rules{
			Locations: mappers.DefaultLocationRules(),
		},
		SFTP: SFTP{
			Upload:    getenvBool("REPORT_SFTP_UPLOAD", false),
			Host:      os.Getenv("REPORT_SFTP_HOST"),
			Port:      getenvInt("REPORT_SFTP_PORT", 22),
			User:      os.Getenv("REPORT_SFTP_USER"),
			Pass:      os.Getenv("REPORT_SFTP_PASS"),
			RemoteDir: getenv("REPORT_SFTP_DIR", "/upload"),
		},
	}

	if path := os.Getenv("RULES_PATH"); path != "" {
		if err := loadRules(path, &cfg.Rules); err != nil {
			return Config{}, err
		}
	}

	switch cfg.StoreDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("config: SQLITE_PATH is empty")
		}
	case "postgres":
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("config: STORE_DRIVER=postgres requires PG_DSN")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// StoreDSN returns the dsn matching the configured driver.
func (c Config) StoreDSN() string {
	if c.StoreDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.SQLitePath
}

// loadExecute resolves the write toggle once. MIGRATION_EXECUTE=true is
// the documented switch; the legacy DRY_RUN variable still works, where
// only the literal string "false" enables writes.
func loadExecute() bool {
	if v := os.Getenv("MIGRATION_EXECUTE"); v != "" {
		return v == "true"
	}
	return os.Getenv("DRY_RUN") == "false"
}

func loadRules(path string, into *Rules) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read rules file: %w", err)
	}
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return fmt.Errorf("config: parse rules file: %w", err)
	}
	if len(r.Locations) > 0 {
		into.Locations = r.Locations
	}
	if r.PartialNameMinLen > 0 {
		into.PartialNameMinLen = r.PartialNameMinLen
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}
