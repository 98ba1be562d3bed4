// Package stats holds the liveness counters shared by all sessions.
package stats

import "sync/atomic"

// Counters tracks process-wide session liveness. A single instance is created
// by the caller and handed to the supervisor, every session and any reader.
type Counters struct {
	online atomic.Int64
	total  atomic.Int64
	ended  atomic.Int64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Online int64 // Sessions whose identify frame was sent
	Total  int64 // Credentials loaded
	Ended  int64 // Sessions that have terminated
}

// New returns zeroed counters.
func New() *Counters {
	return &Counters{}
}

// SetTotal records how many credentials were loaded.
func (c *Counters) SetTotal(n int) {
	c.total.Store(int64(n))
}

// MarkOnline counts one authenticated session.
func (c *Counters) MarkOnline() {
	c.online.Add(1)
}

// MarkEnded counts one terminated session.
func (c *Counters) MarkEnded() {
	c.ended.Add(1)
}

func (c *Counters) Online() int64 { return c.online.Load() }
func (c *Counters) Total() int64  { return c.total.Load() }
func (c *Counters) Ended() int64  { return c.ended.Load() }

// Snapshot returns the current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Online: c.online.Load(),
		Total:  c.total.Load(),
		Ended:  c.ended.Load(),
	}
}
