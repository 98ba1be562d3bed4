// Package supervisor fans out one gateway session per credential.
package supervisor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/gateway-presence/internal/connection"
	"github.com/rickgao/gateway-presence/internal/credentials"
	"github.com/rickgao/gateway-presence/internal/session"
	"github.com/rickgao/gateway-presence/internal/stats"
)

// Supervisor runs independent sessions sharing one Counters instance.
type Supervisor struct {
	cfg      session.Config
	counters *stats.Counters
	logger   *slog.Logger

	seed     int64
	dial     connection.Dialer
	recorder session.Recorder
	metrics  session.Metrics

	spawned atomic.Int64
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSeed makes presence status selection deterministic. Session i uses
// seed+i.
func WithSeed(seed int64) Option {
	return func(s *Supervisor) { s.seed = seed }
}

// WithDialer replaces the transport for every session.
func WithDialer(dial connection.Dialer) Option {
	return func(s *Supervisor) { s.dial = dial }
}

// WithRecorder sets the session event recorder.
func WithRecorder(r session.Recorder) Option {
	return func(s *Supervisor) { s.recorder = r }
}

// WithMetrics sets the session metrics sink.
func WithMetrics(m session.Metrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

// New creates a supervisor. counters is the shared state read by reporters.
func New(cfg session.Config, counters *stats.Counters, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:      cfg,
		counters: counters,
		logger:   slog.Default(),
		seed:     time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts one session per credential and waits for all of them to end.
// Session failures are logged and never affect other sessions. Cancelling ctx
// stops every session.
func (s *Supervisor) Run(ctx context.Context, creds []credentials.Credential) error {
	s.counters.SetTotal(len(creds))
	s.logger.Info("starting sessions", "total", len(creds))

	var g errgroup.Group
	for i, cred := range creds {
		cred := cred
		sess := session.New(cred, s.cfg, s.counters,
			session.WithLogger(s.logger),
			session.WithRand(rand.New(rand.NewSource(s.seed+int64(i)))),
			session.WithDialer(s.dial),
			session.WithRecorder(s.recorder),
			session.WithMetrics(s.metrics),
		)
		s.spawned.Add(1)

		g.Go(func() error {
			if err := sess.Run(ctx); err != nil {
				s.logger.Warn("session ended",
					"session_id", sess.ID().String(),
					"credential", cred,
					"error", err,
				)
			}
			return nil
		})
	}

	err := g.Wait()

	snap := s.counters.Snapshot()
	s.logger.Info("all sessions ended",
		"online", snap.Online,
		"total", snap.Total,
	)
	return err
}

// Spawned returns how many sessions have been created.
func (s *Supervisor) Spawned() int {
	return int(s.spawned.Load())
}
