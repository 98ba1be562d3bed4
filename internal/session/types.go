package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/gateway-presence/internal/connection"
	"github.com/rickgao/gateway-presence/internal/gateway"
)

// Errors
var (
	ErrAlreadyRun       = errors.New("session already run")
	ErrConnectionClosed = errors.New("connection closed")
	ErrMalformedFrame   = errors.New("malformed inbound frame")
	ErrHeartbeatFailed  = errors.New("heartbeat send failed")
)

// Stage names where a session can fail. Used as metric labels.
const (
	StageConnect   = "connect"
	StageIdentify  = "identify"
	StageReceive   = "receive"
	StageHeartbeat = "heartbeat"
)

// Config holds everything a session needs besides its credential.
type Config struct {
	Client     connection.ClientConfig
	Properties gateway.Properties
	Game       gateway.Game
}

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	EventConnected  EventKind = "connected"
	EventIdentified EventKind = "identified"
	EventHello      EventKind = "hello"
	EventEnded      EventKind = "ended"
)

// Event is a session lifecycle record handed to a Recorder.
type Event struct {
	SessionID      uuid.UUID
	CredentialHint string // Redacted credential, never the raw token
	Kind           EventKind
	Detail         string
	OccurredAt     time.Time
}

// Recorder persists session lifecycle events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Metrics receives session observations.
type Metrics interface {
	HeartbeatSent()
	SessionFailed(stage string)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

type nopMetrics struct{}

func (nopMetrics) HeartbeatSent()       {}
func (nopMetrics) SessionFailed(string) {}

// Sender is the write half of a connection.
type Sender interface {
	Send(data []byte) error
}
