package credentials

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// redactedPrefix is how many leading runes of a token survive redaction.
const redactedPrefix = 6

// Credential is an opaque gateway token.
type Credential string

// String returns the redacted form so tokens never reach logs by accident.
func (c Credential) String() string {
	return c.Redacted()
}

// Token returns the raw token for the identify frame.
func (c Credential) Token() string {
	return string(c)
}

// Redacted returns the first few runes of the token followed by an ellipsis.
func (c Credential) Redacted() string {
	r := []rune(string(c))
	if len(r) <= redactedPrefix {
		return strings.Repeat("*", len(r))
	}
	return string(r[:redactedPrefix]) + "…"
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.Redacted())
}

// Parse reads newline-delimited tokens from r.
func Parse(r io.Reader) ([]Credential, error) {
	var creds []Credential

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		creds = append(creds, Credential(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}

	return creds, nil
}

// LoadFile reads the token list at path.
func LoadFile(path string) ([]Credential, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
