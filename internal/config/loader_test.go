package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kkarklins/balss/internal/config"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
resolver:
  timezone: Europe/Tallinn
  confidence_threshold: 0.90
  contacts:
    - Jānis Bērziņš
    - Mari Tamm
teacher:
  provider: openai
  api_key: test-key
  model: gpt-4o-mini
  timeout: 5s
goldlog:
  path: /tmp/gold.jsonl
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":9090")
	}
	if cfg.Resolver.Timezone != "Europe/Tallinn" {
		t.Errorf("Timezone = %q, want Europe/Tallinn", cfg.Resolver.Timezone)
	}
	if got := cfg.Teacher.Timeout.Std(); got != 5*time.Second {
		t.Errorf("Teacher.Timeout = %v, want 5s", got)
	}
	if len(cfg.Resolver.Contacts) != 2 {
		t.Errorf("Contacts = %v, want 2 entries", cfg.Resolver.Contacts)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("server:\n  listen_addr: \":8081\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want info default", cfg.Server.LogLevel)
	}
	if cfg.Resolver.Timezone != "Europe/Riga" {
		t.Errorf("Timezone = %q, want Europe/Riga default", cfg.Resolver.Timezone)
	}
	if cfg.Resolver.ConfidenceThreshold != 0.92 {
		t.Errorf("ConfidenceThreshold = %v, want 0.92 default", cfg.Resolver.ConfidenceThreshold)
	}
	if got := cfg.Teacher.Timeout.Std(); got != 8*time.Second {
		t.Errorf("Teacher.Timeout = %v, want 8s default", got)
	}
	if cfg.GoldLog.Path != "goldlog.jsonl" {
		t.Errorf("GoldLog.Path = %q, want goldlog.jsonl default", cfg.GoldLog.Path)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("nonsense: true\n"))
	if err == nil {
		t.Fatal("LoadFromReader with unknown field: err = nil, want error")
	}
}

func TestValidate_BadThreshold(t *testing.T) {
	t.Parallel()

	yaml := `
resolver:
  confidence_threshold: 0.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("LoadFromReader with threshold 0.5: err = nil, want range error")
	}
	if !strings.Contains(err.Error(), "confidence_threshold") {
		t.Errorf("error = %v, want mention of confidence_threshold", err)
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	t.Parallel()

	yaml := `
resolver:
  timezone: Mars/Olympus
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("LoadFromReader with bad timezone: err = nil, want error")
	}
}

func TestValidate_TeacherRequiresModelAndKey(t *testing.T) {
	t.Parallel()

	yaml := `
teacher:
  provider: anthropic
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("LoadFromReader with provider but no model/key: err = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "teacher.model") {
		t.Errorf("error = %v, want mention of teacher.model", err)
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	_, err := reg.CreateLLM(config.TeacherConfig{Provider: "nope"})
	if err != config.ErrProviderNotRegistered {
		t.Fatalf("CreateLLM(unknown) err = %v, want ErrProviderNotRegistered", err)
	}
}
