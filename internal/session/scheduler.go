package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/gateway-presence/internal/gateway"
)

// SchedulerState is the keepalive state machine position.
type SchedulerState int32

const (
	StateIdle    SchedulerState = iota // No interval known yet
	StateRunning                       // Heartbeats being sent
	StateStopped                       // Session over
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("SchedulerState(%d)", int32(s))
	}
}

// Scheduler sends heartbeat frames on the interval announced by hello.
type Scheduler struct {
	sender Sender
	logger *slog.Logger
	onBeat func()

	start    chan time.Duration
	started  atomic.Bool
	state    atomic.Int32
	interval atomic.Int64
	sent     atomic.Int64
}

// NewScheduler creates an idle scheduler writing to sender. onBeat, if not
// nil, is called after every successful heartbeat.
func NewScheduler(sender Sender, logger *slog.Logger, onBeat func()) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if onBeat == nil {
		onBeat = func() {}
	}

	return &Scheduler{
		sender: sender,
		logger: logger,
		onBeat: onBeat,
		start:  make(chan time.Duration, 1),
	}
}

// Start moves the scheduler from Idle to Running. Only the first call with a
// positive interval has any effect; it reports whether this call started it.
func (s *Scheduler) Start(interval time.Duration) bool {
	if interval <= 0 || s.State() == StateStopped {
		return false
	}
	if !s.started.CompareAndSwap(false, true) {
		return false
	}

	s.interval.Store(int64(interval))
	s.start <- interval
	return true
}

// Run blocks until ctx is done or a heartbeat fails. While Idle it only
// waits. Once started it sends a heartbeat immediately and then once per
// interval. A cancelled context is a clean stop and returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.state.Store(int32(StateStopped))

	var interval time.Duration
	select {
	case <-ctx.Done():
		return nil
	case interval = <-s.start:
	}

	payload, err := gateway.EncodeHeartbeat()
	if err != nil {
		return err
	}

	s.state.Store(int32(StateRunning))
	s.logger.Debug("keepalive started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.sender.Send(payload); err != nil {
			return fmt.Errorf("%w: %w", ErrHeartbeatFailed, err)
		}
		s.sent.Add(1)
		s.onBeat()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

// Interval returns the learned interval, or 0 while Idle.
func (s *Scheduler) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

// Sent returns how many heartbeats were written.
func (s *Scheduler) Sent() int64 {
	return s.sent.Load()
}
