// Package connection implements the WebSocket transport for one gateway session.
//
// A Client:
//   - Dials the gateway endpoint (one connection per credential)
//   - Serializes writes so the identify frame and heartbeats can come from
//     different goroutines while the read loop runs
//   - Delivers every inbound text frame, timestamped, on Messages()
//   - Reports the terminal read error on Errors() and closes Messages()
package connection
