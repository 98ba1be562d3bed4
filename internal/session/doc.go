// Package session runs one credential's gateway connection.
//
// A Session:
//   - Connects and sends the identify frame with a random presence status
//   - Runs the inbound Dispatcher and the keepalive Scheduler concurrently
//     over the same connection, in one cancellation scope
//   - Ends when either loop fails or the parent context is cancelled; it is
//     never reconnected
package session
