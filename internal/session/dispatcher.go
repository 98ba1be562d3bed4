package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/gateway-presence/internal/connection"
	"github.com/rickgao/gateway-presence/internal/gateway"
)

// DispatcherStats contains inbound frame counts.
type DispatcherStats struct {
	Received  int64
	Hellos    int64
	Discarded int64
}

// Dispatcher decodes inbound frames and starts the scheduler on hello.
type Dispatcher struct {
	scheduler *Scheduler
	logger    *slog.Logger
	onHello   func(time.Duration)

	received  atomic.Int64
	hellos    atomic.Int64
	discarded atomic.Int64
}

// NewDispatcher creates a dispatcher feeding scheduler. onHello, if not nil,
// is called once when the keepalive is started.
func NewDispatcher(scheduler *Scheduler, logger *slog.Logger, onHello func(time.Duration)) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if onHello == nil {
		onHello = func(time.Duration) {}
	}

	return &Dispatcher{
		scheduler: scheduler,
		logger:    logger,
		onHello:   onHello,
	}
}

// Run consumes messages until the stream ends, a frame cannot be decoded or
// ctx is done. It always returns a non-nil error.
func (d *Dispatcher) Run(ctx context.Context, messages <-chan connection.TimestampedMessage, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errs:
			return fmt.Errorf("receive: %w", err)
		case msg, ok := <-messages:
			if !ok {
				// The read loop publishes its error before closing messages
				select {
				case err := <-errs:
					return fmt.Errorf("receive: %w", err)
				default:
					return ErrConnectionClosed
				}
			}
			if err := d.Handle(msg.Data); err != nil {
				return err
			}
		}
	}
}

// Handle processes one inbound frame.
func (d *Dispatcher) Handle(data []byte) error {
	d.received.Add(1)

	frame, err := gateway.DecodeFrame(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	if frame.Op != gateway.OpHello {
		d.discarded.Add(1)
		return nil
	}
	d.hellos.Add(1)

	interval, err := frame.HeartbeatInterval()
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidInterval) {
			d.logger.Warn("ignoring hello without usable interval", "error", err)
			return nil
		}
		return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	if !d.scheduler.Start(interval) {
		d.logger.Debug("duplicate hello ignored",
			"interval", interval,
			"active_interval", d.scheduler.Interval(),
		)
		return nil
	}

	d.onHello(interval)
	return nil
}

// Stats returns inbound counts.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Received:  d.received.Load(),
		Hellos:    d.hellos.Load(),
		Discarded: d.discarded.Load(),
	}
}
