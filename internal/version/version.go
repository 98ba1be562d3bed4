// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/gateway-presence/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/gateway-presence/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/presence
package version

import "log/slog"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return "presence " + Version + " (" + Commit + ") built " + BuildTime
}

// LogAttrs returns the build info as a slog group for startup logs.
func LogAttrs() slog.Attr {
	return slog.Group("build",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("time", BuildTime),
	)
}
