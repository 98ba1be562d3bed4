package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/gateway-presence/internal/config"
	"github.com/rickgao/gateway-presence/internal/connection"
	"github.com/rickgao/gateway-presence/internal/credentials"
	"github.com/rickgao/gateway-presence/internal/gateway"
	"github.com/rickgao/gateway-presence/internal/history"
	"github.com/rickgao/gateway-presence/internal/metrics"
	"github.com/rickgao/gateway-presence/internal/report"
	"github.com/rickgao/gateway-presence/internal/session"
	"github.com/rickgao/gateway-presence/internal/stats"
	"github.com/rickgao/gateway-presence/internal/supervisor"
	"github.com/rickgao/gateway-presence/internal/version"
)

type runOptions struct {
	configPath string
	tokensPath string
	logLevel   string
	quiet      bool
	seed       int64
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open one session per token and keep them alive until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (defaults only when empty)")
	flags.StringVar(&opts.tokensPath, "tokens", "", "path to token list (overrides credentials.path)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flags.BoolVar(&opts.quiet, "quiet", false, "do not print the online/total summary")
	flags.Int64Var(&opts.seed, "seed", 0, "seed for presence status selection (overrides presence.seed)")

	return cmd
}

// loadConfig applies command line overrides on top of the config file.
func loadConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.tokensPath != "" {
		cfg.Credentials.Path = opts.tokensPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.quiet {
		cfg.Report.Quiet = true
	}
	if cmd.Flags().Changed("seed") {
		cfg.Presence.Seed = opts.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// sessionConfig converts the loaded configuration for the supervisor.
func sessionConfig(cfg *config.Config) (session.Config, error) {
	gatewayURL, err := cfg.GatewayURL()
	if err != nil {
		return session.Config{}, err
	}

	clientCfg := connection.DefaultClientConfig()
	clientCfg.URL = gatewayURL
	clientCfg.HandshakeTimeout = cfg.Gateway.HandshakeTimeout
	clientCfg.WriteTimeout = cfg.Gateway.WriteTimeout
	clientCfg.BufferSize = cfg.Gateway.BufferSize

	return session.Config{
		Client: clientCfg,
		Properties: gateway.Properties{
			OS:      cfg.Identity.OS,
			Browser: cfg.Identity.Browser,
			Device:  cfg.Identity.Device,
		},
		Game: gateway.Game{
			Name:    cfg.Presence.Game.Name,
			Type:    cfg.Presence.Game.Type,
			Details: cfg.Presence.Game.Details,
			State:   cfg.Presence.Game.State,
		},
	}, nil
}

func run(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// Logs go to stderr so the summary line on stdout stays readable
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting presence",
		version.LogAttrs(),
		"config", opts.configPath,
	)

	creds, err := credentials.LoadFile(cfg.Credentials.Path)
	if err != nil {
		logger.Error("failed to load credentials", "path", cfg.Credentials.Path, "error", err)
		return err
	}

	sessCfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		"gateway", sessCfg.Client.URL,
		"credentials", len(creds),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	counters := stats.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sessionMetrics := metrics.New(registry, counters)

	supOpts := []supervisor.Option{
		supervisor.WithLogger(logger),
		supervisor.WithMetrics(sessionMetrics),
	}
	if cfg.Presence.Seed != 0 {
		supOpts = append(supOpts, supervisor.WithSeed(cfg.Presence.Seed))
	}

	var historyCheck metrics.Pinger
	if cfg.History.Enabled() {
		logger.Info("connecting to history database",
			"host", cfg.History.Host,
			"port", cfg.History.Port,
			"database", cfg.History.Name,
		)
		store, err := history.Connect(ctx, cfg.History)
		if err != nil {
			logger.Error("failed to connect to history database", "error", err)
			return err
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare history schema", "error", err)
			return err
		}
		supOpts = append(supOpts, supervisor.WithRecorder(store))
		historyCheck = store
	}

	// Bind before any session starts so a busy port is a startup error
	var metricsListener net.Listener
	if cfg.Metrics.Enabled {
		metricsListener, err = metrics.Listen(cfg.Metrics.Port)
		if err != nil {
			logger.Error("failed to start metrics server", "error", err)
			return err
		}
		defer metricsListener.Close()
	}

	sup := supervisor.New(sessCfg, counters, supOpts...)

	// Reporter and metrics server stop once every session has ended
	auxCtx, cancelAux := context.WithCancel(ctx)
	defer cancelAux()

	g, gctx := errgroup.WithContext(auxCtx)

	if !cfg.Report.Quiet {
		reporter := report.New(cmd.OutOrStdout(), counters, cfg.Report.Interval)
		g.Go(func() error {
			reporter.Run(gctx)
			return nil
		})
	}

	if metricsListener != nil {
		handler := metrics.Handler(cfg.Metrics.Path, registry, counters, historyCheck)
		g.Go(func() error {
			// Sessions keep running without metrics
			if err := metrics.Serve(gctx, metricsListener, handler, logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancelAux()
		return sup.Run(gctx, creds)
	})

	if err := g.Wait(); err != nil {
		logger.Error("presence stopped with error", "error", err)
		return err
	}

	logger.Info("presence stopped")
	return nil
}
