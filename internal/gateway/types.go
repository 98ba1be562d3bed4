package gateway

import (
	"encoding/json"
	"errors"
	"math/rand"
)

// Opcodes used by presence sessions.
const (
	OpHeartbeat = 1
	OpIdentify  = 2
	OpHello     = 10
)

// Errors
var (
	ErrInvalidInterval = errors.New("hello frame has no positive heartbeat_interval")
	ErrNotHello        = errors.New("frame is not a hello frame")
)

// Status is the presence status reported at identify time.
type Status string

const (
	StatusOnline Status = "online"
	StatusIdle   Status = "idle"
)

// Statuses is the fixed set a session picks from.
var Statuses = []Status{StatusOnline, StatusIdle}

// PickStatus chooses a status uniformly from Statuses.
func PickStatus(rng *rand.Rand) Status {
	return Statuses[rng.Intn(len(Statuses))]
}

// Frame is the inbound envelope. D is left raw until the opcode is known.
type Frame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

// Hello is the payload of an op 10 frame.
type Hello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"` // Milliseconds
}

// Properties identifies the client platform. Values are opaque to the gateway
// session logic; any stable strings work.
type Properties struct {
	OS      string `json:"$os"`
	Browser string `json:"$browser"`
	Device  string `json:"$device"`
}

// Game is the static display metadata embedded in the presence report.
type Game struct {
	Name    string `json:"name"`
	Type    int    `json:"type"`
	Details string `json:"details"`
	State   string `json:"state"`
}

// Presence is the status report sent with identify.
type Presence struct {
	Game       Game              `json:"game"`
	Status     Status            `json:"status"`
	Since      int64             `json:"since"`
	Activities []json.RawMessage `json:"activities"`
	AFK        bool              `json:"afk"`
}

// NewPresence builds a presence report with no activities and zero idle time.
func NewPresence(game Game, status Status) Presence {
	return Presence{
		Game:       game,
		Status:     status,
		Since:      0,
		Activities: []json.RawMessage{},
		AFK:        false,
	}
}

// Identify is the payload of an op 2 frame.
type Identify struct {
	Token      string     `json:"token"`
	Properties Properties `json:"properties"`
	Presence   Presence   `json:"presence"`
}

// identifyFrame carries explicit null "s" and "t" fields.
type identifyFrame struct {
	Op int      `json:"op"`
	D  Identify `json:"d"`
	S  *int64   `json:"s"`
	T  *string  `json:"t"`
}

// heartbeatFrame always encodes a null payload.
type heartbeatFrame struct {
	Op int    `json:"op"`
	D  *int64 `json:"d"`
}
