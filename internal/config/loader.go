package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// apiKeyEnv is the environment variable consulted when teacher.api_key is not
// set in the file. Keeps secrets out of checked-in configs.
const apiKeyEnv = "BALSS_TEACHER_API_KEY"

// ValidTeacherProviders lists the LLM backend names shipped with Balss.
// Used by [Validate] to warn about unrecognised provider names.
var ValidTeacherProviders = []string{"openai", "anthropic"}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and the
// environment secret override, and validates the result. Useful in tests
// where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if cfg.Teacher.APIKey == "" {
		cfg.Teacher.APIKey = os.Getenv(apiKeyEnv)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Resolver.Timezone == "" {
		cfg.Resolver.Timezone = "Europe/Riga"
	}
	if cfg.Resolver.ConfidenceThreshold == 0 {
		cfg.Resolver.ConfidenceThreshold = 0.92
	}
	if cfg.Teacher.Timeout == 0 {
		cfg.Teacher.Timeout = Duration(8 * time.Second)
	}
	if cfg.GoldLog.Path == "" && cfg.GoldLog.PostgresDSN == "" {
		cfg.GoldLog.Path = "goldlog.jsonl"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if _, err := time.LoadLocation(cfg.Resolver.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("resolver.timezone %q is not a valid IANA zone: %w", cfg.Resolver.Timezone, err))
	}
	if cfg.Resolver.ConfidenceThreshold < 0.85 || cfg.Resolver.ConfidenceThreshold > 0.95 {
		errs = append(errs, fmt.Errorf("resolver.confidence_threshold %.2f is out of range [0.85, 0.95]", cfg.Resolver.ConfidenceThreshold))
	}

	if cfg.Teacher.Provider != "" {
		if !slices.Contains(ValidTeacherProviders, cfg.Teacher.Provider) {
			slog.Warn("unknown teacher provider name — may be a typo or third-party provider",
				"name", cfg.Teacher.Provider,
				"known", ValidTeacherProviders,
			)
		}
		if cfg.Teacher.Model == "" {
			errs = append(errs, fmt.Errorf("teacher.model is required when teacher.provider is set"))
		}
		if cfg.Teacher.APIKey == "" {
			errs = append(errs, fmt.Errorf("teacher.api_key is required when teacher.provider is set (or set %s)", apiKeyEnv))
		}
	} else {
		slog.Warn("no teacher provider configured; low-confidence requests will not be escalated")
	}

	if cfg.Teacher.Timeout < 0 {
		errs = append(errs, fmt.Errorf("teacher.timeout must not be negative"))
	}

	if cfg.GoldLog.SummarySchedule != "" && cfg.GoldLog.PostgresDSN == "" {
		slog.Warn("goldlog.summary_schedule is set but goldlog.postgres_dsn is empty; the summary job needs the Postgres sink and will be skipped")
	}

	return errors.Join(errs...)
}
