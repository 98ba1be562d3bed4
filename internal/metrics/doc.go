// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Session counters (online, total, ended) read from stats.Counters
//   - Heartbeats sent across all sessions
//   - Session failures by stage (connect, identify, receive, heartbeat)
package metrics
