package markdown

import (
	"io"

	"github.com/sirupsen/logrus"
)

// log is the package-level diagnostic logger. It defaults to Debug-level
// output discarded entirely, so a caller that never touches it pays
// nothing; call SetLogOutput/SetLogLevel to observe the two diagnostic
// points this package logs at: a deadline abort and a serializer-plugin
// miss.
var log = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	return l
}()

// SetLogOutput redirects the package's diagnostic logger. Passing nil
// restores the default (discarded) output.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	log.SetOutput(w)
}

// SetLogLevel adjusts the package's diagnostic logger verbosity.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}
