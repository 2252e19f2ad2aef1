package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Events is the structured per-connection audit trail: one line per
// connection lifecycle event (established, handshake failure, closed),
// carrying fields a syslog one-liner can't hold cleanly (bytes relayed,
// chosen server, teardown reason).
var Events = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetEventsDebug raises the structured logger's level to debug, used
// when ioredird runs with -d.
func SetEventsDebug(debug bool) {
	lvl := zerolog.InfoLevel
	if debug {
		lvl = zerolog.DebugLevel
	}
	Events = Events.Level(lvl)
}
