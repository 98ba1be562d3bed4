// Package gateway defines the wire frames exchanged with the real-time gateway.
//
// Only three frames matter to a presence session:
//   - identify (op 2), sent once right after the connection opens
//   - hello (op 10), received first and carrying the heartbeat interval
//   - heartbeat (op 1), sent on the interval announced by hello
//
// Every other inbound opcode is decoded only far enough to read "op".
package gateway
