// Package history stores session lifecycle events in PostgreSQL.
//
// History is optional. When enabled, every session records when it
// connected, identified, received hello and ended. Only redacted
// credentials are written.
package history
