package featureflags

import (
	"os"
	"strings"
)

const (
	// RevalidateSession drops a restored session whose user is not registered
	RevalidateSession = "revalidate_session"

	// EventsFeed exposes the websocket change feed
	EventsFeed = "events_feed"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	return EnabledDefault(name, false)
}

// EnabledDefault is like Enabled but returns def when the flag is unset
// or holds an unrecognised value.
func EnabledDefault(name string, def bool) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
