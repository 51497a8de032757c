package common

import (
	log "github.com/sirupsen/logrus"
)

// Log is the package-wide structured logger. Storage and concurrency code
// logs through it rather than fmt.Printf so engine diagnostics can be
// redirected, leveled, and filtered the same way an embedding application's
// own logs are.
var Log = log.New()

func init() {
	Log.SetLevel(log.InfoLevel)
}

// Debugf logs at debug level when EnableDebug is set, otherwise it is a no-op.
// Call sites that are hot (per-tuple, per-page) should guard with EnableDebug
// themselves to avoid paying for the Sprintf when logging is off.
func Debugf(format string, args ...interface{}) {
	if EnableDebug {
		Log.Debugf(format, args...)
	}
}
