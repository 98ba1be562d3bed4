package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"
)

// EncodeIdentify marshals an op 2 frame.
func EncodeIdentify(id Identify) ([]byte, error) {
	data, err := json.Marshal(identifyFrame{Op: OpIdentify, D: id})
	if err != nil {
		return nil, fmt.Errorf("marshal identify: %w", err)
	}
	return data, nil
}

// EncodeHeartbeat marshals an op 1 frame.
func EncodeHeartbeat() ([]byte, error) {
	data, err := json.Marshal(heartbeatFrame{Op: OpHeartbeat})
	if err != nil {
		return nil, fmt.Errorf("marshal heartbeat: %w", err)
	}
	return data, nil
}

// DecodeFrame parses the envelope of an inbound message.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// maxIntervalMillis is the largest interval representable as a time.Duration.
const maxIntervalMillis = math.MaxInt64 / int64(time.Millisecond)

// HeartbeatInterval extracts the interval from a hello frame.
func (f Frame) HeartbeatInterval() (time.Duration, error) {
	if f.Op != OpHello {
		return 0, ErrNotHello
	}
	if len(f.D) == 0 {
		return 0, ErrInvalidInterval
	}

	var h Hello
	if err := json.Unmarshal(f.D, &h); err != nil {
		return 0, fmt.Errorf("decode hello: %w", err)
	}
	if h.HeartbeatInterval <= 0 || h.HeartbeatInterval > maxIntervalMillis {
		return 0, ErrInvalidInterval
	}

	return time.Duration(h.HeartbeatInterval) * time.Millisecond, nil
}

// URL builds the gateway endpoint with the encoding and protocol version
// query parameters.
func URL(base, encoding string, version int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse gateway url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("gateway url scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	q.Set("encoding", encoding)
	q.Set("v", strconv.Itoa(version))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
