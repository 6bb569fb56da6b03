// Command balss is the Balss temporal intent resolution server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/kkarklins/balss/internal/config"
	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/internal/health"
	"github.com/kkarklins/balss/internal/observe"
	"github.com/kkarklins/balss/internal/resolve"
	"github.com/kkarklins/balss/internal/resolve/teacher"
	"github.com/kkarklins/balss/internal/server"
	"github.com/kkarklins/balss/pkg/provider/llm"
	"github.com/kkarklins/balss/pkg/provider/llm/anthropic"
	"github.com/kkarklins/balss/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "balss: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "balss: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("balss starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"timezone", cfg.Resolver.Timezone,
		"threshold", cfg.Resolver.ConfidenceThreshold,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics provider with the Prometheus bridge behind /metrics.
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "balss"})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	loc, err := time.LoadLocation(cfg.Resolver.Timezone)
	if err != nil {
		slog.Error("invalid timezone", "zone", cfg.Resolver.Timezone, "err", err)
		return 1
	}

	// Gold log sinks: file or Postgres for persistence, plus the live tail
	// hub.
	hub := goldlog.NewHub()
	var (
		sink     goldlog.Sink
		pgSink   *goldlog.PostgresSink
		checkers []health.Checker
	)
	if cfg.GoldLog.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.GoldLog.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pool.Close()

		pgSink = goldlog.NewPostgresSink(pool)
		if err := pgSink.Migrate(ctx); err != nil {
			slog.Error("gold log migration failed", "err", err)
			return 1
		}
		sink = pgSink
		checkers = append(checkers, health.Checker{
			Name:  "goldlog",
			Check: pool.Ping,
		})
		slog.Info("gold log sink ready", "kind", "postgres")
	} else {
		sink = goldlog.NewFileSink(cfg.GoldLog.Path)
		slog.Info("gold log sink ready", "kind", "file", "path", cfg.GoldLog.Path)
	}

	// Teacher escalation backend (optional).
	routerOpts := []resolve.RouterOption{
		resolve.WithThreshold(cfg.Resolver.ConfidenceThreshold),
		resolve.WithMetrics(metrics),
	}
	if cfg.Teacher.Provider != "" {
		reg := config.NewRegistry()
		registerTeacherProviders(reg)

		provider, err := reg.CreateLLM(cfg.Teacher)
		if err != nil {
			slog.Error("failed to create teacher provider",
				"name", cfg.Teacher.Provider, "err", err)
			return 1
		}
		routerOpts = append(routerOpts, resolve.WithTeacher(
			teacher.New(provider, teacher.WithTimeout(cfg.Teacher.Timeout.Std())),
		))
		slog.Info("teacher provider ready",
			"name", cfg.Teacher.Provider, "model", cfg.Teacher.Model)
	}

	pipeline := resolve.NewPipeline(loc, resolve.WithContacts(cfg.Resolver.Contacts))
	router := resolve.NewRouter(pipeline, goldlog.MultiSink(sink, hub), logger, routerOpts...)

	if cfg.Teacher.Provider != "" {
		// A teacher outage degrades to the fast path, so it must not fail
		// readiness.
		checkers = append(checkers, health.Checker{
			Name:     "teacher",
			Optional: true,
			Check:    func(context.Context) error { return router.TeacherHealthy() },
		})
	}

	srv := server.New(cfg.Server.ListenAddr, router, hub, health.New(checkers...), metrics, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cfg.GoldLog.SummarySchedule != "" && pgSink != nil {
		summarizer, err := goldlog.NewSummarizer(pgSink, cfg.GoldLog.SummarySchedule, loc, logger)
		if err != nil {
			slog.Error("invalid summary schedule", "err", err)
			return 1
		}
		g.Go(func() error {
			if err := summarizer.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		slog.Info("agreement summary scheduled", "cron", cfg.GoldLog.SummarySchedule)
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerTeacherProviders wires the shipped LLM backends into reg.
func registerTeacherProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.TeacherConfig) (llm.Provider, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})
	reg.RegisterLLM("anthropic", func(entry config.TeacherConfig) (llm.Provider, error) {
		var opts []anthropic.Option
		if entry.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(entry.BaseURL))
		}
		return anthropic.New(entry.APIKey, entry.Model, opts...)
	})
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
