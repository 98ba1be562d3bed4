package gateway

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIdentify(t *testing.T) {
	id := Identify{
		Token: "tok",
		Properties: Properties{
			OS:      "linux",
			Browser: "Discord iOS",
			Device:  "linux Device",
		},
		Presence: NewPresence(Game{Name: "g", Type: 0, Details: "d", State: "s"}, StatusIdle),
	}

	data, err := EncodeIdentify(id)
	require.NoError(t, err)

	want := `{"op":2,"d":{"token":"tok",` +
		`"properties":{"$os":"linux","$browser":"Discord iOS","$device":"linux Device"},` +
		`"presence":{"game":{"name":"g","type":0,"details":"d","state":"s"},` +
		`"status":"idle","since":0,"activities":[],"afk":false}},"s":null,"t":null}`
	assert.JSONEq(t, want, string(data))
	assert.Contains(t, string(data), `"activities":[]`)
}

func TestEncodeHeartbeat(t *testing.T) {
	data, err := EncodeHeartbeat()
	require.NoError(t, err)
	assert.Equal(t, `{"op":1,"d":null}`, string(data))
}

func TestFrame_HeartbeatInterval(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr error
	}{
		{
			name:  "hello",
			input: `{"op":10,"d":{"heartbeat_interval":41250}}`,
			want:  41250 * time.Millisecond,
		},
		{
			name:  "hello with extra fields",
			input: `{"op":10,"d":{"heartbeat_interval":100,"_trace":["x"]},"s":null,"t":null}`,
			want:  100 * time.Millisecond,
		},
		{name: "not hello", input: `{"op":11,"d":null}`, wantErr: ErrNotHello},
		{name: "missing payload", input: `{"op":10}`, wantErr: ErrInvalidInterval},
		{name: "null payload", input: `{"op":10,"d":null}`, wantErr: ErrInvalidInterval},
		{name: "zero interval", input: `{"op":10,"d":{"heartbeat_interval":0}}`, wantErr: ErrInvalidInterval},
		{name: "negative interval", input: `{"op":10,"d":{"heartbeat_interval":-5}}`, wantErr: ErrInvalidInterval},
		{name: "interval overflows duration", input: `{"op":10,"d":{"heartbeat_interval":9223372036855}}`, wantErr: ErrInvalidInterval},
		{name: "interval far beyond range", input: `{"op":10,"d":{"heartbeat_interval":18446744073709}}`, wantErr: ErrInvalidInterval},
		{
			name:  "largest representable interval",
			input: `{"op":10,"d":{"heartbeat_interval":9223372036854}}`,
			want:  9223372036854 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFrame([]byte(tt.input))
			require.NoError(t, err)

			got, err := f.HeartbeatInterval()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"op":`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestPickStatus_Distribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	counts := map[Status]int{}

	const n = 10000
	for i := 0; i < n; i++ {
		s := PickStatus(rng)
		require.Contains(t, Statuses, s)
		counts[s]++
	}

	assert.Len(t, counts, 2)
	for _, s := range Statuses {
		assert.InDelta(t, n/2, counts[s], n*0.05, "status %s", s)
	}
}

func TestPickStatus_Seeded(t *testing.T) {
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		assert.Equal(t, PickStatus(a), PickStatus(b))
	}
}

func TestURL(t *testing.T) {
	got, err := URL("wss://gateway.example.com", "json", 10)
	require.NoError(t, err)
	assert.Equal(t, "wss://gateway.example.com/?encoding=json&v=10", got)

	got, err = URL("ws://127.0.0.1:9000/gw", "json", 9)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9000/gw?encoding=json&v=9", got)

	_, err = URL("https://gateway.example.com", "json", 10)
	assert.Error(t, err)
}

func TestNewPresence(t *testing.T) {
	p := NewPresence(Game{Name: "x"}, StatusOnline)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"game":{"name":"x","type":0,"details":"","state":""},"status":"online","since":0,"activities":[],"afk":false}`, string(data))
}
