// Package config provides the configuration schema, loader, and LLM provider
// registry for the Balss resolver service.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity for the Balss server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration is a time.Duration that decodes from YAML strings like "8s" or
// "2m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration structure for Balss.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Resolver ResolverConfig `yaml:"resolver"`
	Teacher  TeacherConfig  `yaml:"teacher"`
	GoldLog  GoldLogConfig  `yaml:"goldlog"`
}

// ServerConfig holds network and logging settings for the Balss server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ResolverConfig tunes the fast-path resolution pipeline.
type ResolverConfig struct {
	// Timezone is the IANA zone all date math is performed in.
	// Default: Europe/Riga.
	Timezone string `yaml:"timezone"`

	// ConfidenceThreshold is the score at or above which the fast-path
	// result is accepted without escalation. Default: 0.92.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// Contacts lists known contact names used for phonetic matching of
	// spoken call targets. Optional.
	Contacts []string `yaml:"contacts"`
}

// TeacherConfig selects and configures the escalation resolver backend.
type TeacherConfig struct {
	// Provider selects the registered LLM backend ("openai" or "anthropic").
	// Empty disables escalation entirely: every request is answered by the
	// fast path.
	Provider string `yaml:"provider"`

	// APIKey authenticates against the provider. Falls back to the
	// BALSS_TEACHER_API_KEY environment variable when empty.
	APIKey string `yaml:"api_key"`

	// Model selects the model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single escalation call. Default: 8s.
	Timeout Duration `yaml:"timeout"`
}

// GoldLogConfig selects the gold-log sink.
type GoldLogConfig struct {
	// Path is the JSONL file the file sink appends to. Used when
	// PostgresDSN is empty. Default: goldlog.jsonl.
	Path string `yaml:"path"`

	// PostgresDSN selects the Postgres sink when non-empty.
	PostgresDSN string `yaml:"postgres_dsn"`

	// SummarySchedule is the cron expression for the agreement summary job.
	// Empty disables the job. Only effective with the Postgres sink.
	SummarySchedule string `yaml:"summary_schedule"`
}
