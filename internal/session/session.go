package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/gateway-presence/internal/connection"
	"github.com/rickgao/gateway-presence/internal/credentials"
	"github.com/rickgao/gateway-presence/internal/gateway"
	"github.com/rickgao/gateway-presence/internal/stats"
)

// recordTimeout bounds each Recorder call.
const recordTimeout = 5 * time.Second

// Session owns one credential's connection lifecycle.
type Session struct {
	id       uuid.UUID
	cred     credentials.Credential
	cfg      Config
	counters *stats.Counters

	dial     connection.Dialer
	rng      *rand.Rand
	recorder Recorder
	metrics  Metrics
	logger   *slog.Logger

	ran    atomic.Bool
	status atomic.Value // gateway.Status sent with identify
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the parent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRand sets the random source used to pick the presence status.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithDialer replaces connection.NewClient.
func WithDialer(dial connection.Dialer) Option {
	return func(s *Session) {
		if dial != nil {
			s.dial = dial
		}
	}
}

// WithRecorder sets where lifecycle events go.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a session for cred. counters must be shared with the supervisor.
func New(cred credentials.Credential, cfg Config, counters *stats.Counters, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		cred:     cred,
		cfg:      cfg,
		counters: counters,
		dial:     connection.NewClient,
		recorder: nopRecorder{},
		metrics:  nopMetrics{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.logger = s.logger.With("session_id", s.id.String(), "credential", cred)

	return s
}

// ID returns the session's correlation ID.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Status returns the presence status sent with identify, or "" before then.
func (s *Session) Status() gateway.Status {
	st, _ := s.status.Load().(gateway.Status)
	return st
}

// Run connects, identifies and keeps the connection alive until it fails or
// ctx is cancelled. Cancellation of ctx returns nil; any other termination
// returns the cause. Run can only be called once.
func (s *Session) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer s.counters.MarkEnded()

	client := s.dial(s.cfg.Client, s.logger)
	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return s.fail(ctx, StageConnect, fmt.Errorf("connect: %w", err))
	}
	defer client.Close()

	s.record(ctx, EventConnected, "")

	status := gateway.PickStatus(s.rng)
	payload, err := gateway.EncodeIdentify(gateway.Identify{
		Token:      s.cred.Token(),
		Properties: s.cfg.Properties,
		Presence:   gateway.NewPresence(s.cfg.Game, status),
	})
	if err != nil {
		return s.fail(ctx, StageIdentify, err)
	}
	if err := client.Send(payload); err != nil {
		return s.fail(ctx, StageIdentify, fmt.Errorf("send identify: %w", err))
	}

	s.status.Store(status)
	s.counters.MarkOnline()
	s.record(ctx, EventIdentified, string(status))
	s.logger.Info("session identified", "status", status)

	scheduler := NewScheduler(client, s.logger, s.metrics.HeartbeatSent)
	dispatcher := NewDispatcher(scheduler, s.logger, func(interval time.Duration) {
		s.logger.Debug("hello received", "heartbeat_interval", interval)
		s.record(ctx, EventHello, interval.String())
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx, client.Messages(), client.Errors())
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	err = g.Wait()

	if ctx.Err() != nil {
		s.logger.Debug("session stopped", "heartbeats", scheduler.Sent())
		s.record(ctx, EventEnded, "shutdown")
		return nil
	}

	stage := StageReceive
	if errors.Is(err, ErrHeartbeatFailed) {
		stage = StageHeartbeat
	}
	s.logger.Debug("session loops ended",
		"heartbeats", scheduler.Sent(),
		"frames", dispatcher.Stats().Received,
		"last_activity", client.LastActivity(),
	)
	return s.fail(ctx, stage, err)
}

// fail records a terminal error and returns it.
func (s *Session) fail(ctx context.Context, stage string, err error) error {
	s.metrics.SessionFailed(stage)
	s.record(ctx, EventEnded, fmt.Sprintf("%s: %v", stage, err))
	return err
}

// record hands an event to the recorder. Failures are logged only.
func (s *Session) record(ctx context.Context, kind EventKind, detail string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	ev := Event{
		SessionID:      s.id,
		CredentialHint: s.cred.Redacted(),
		Kind:           kind,
		Detail:         detail,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.logger.Warn("failed to record session event", "kind", kind, "error", err)
	}
}
