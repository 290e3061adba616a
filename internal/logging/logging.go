package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Unknown levels fall back to info and are
// reported once through the logger itself.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.Out = out
	log.Formatter = &logrus.TextFormatter{ForceColors: out == os.Stderr, FullTimestamp: true}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Level = logrus.InfoLevel
		log.WithError(err).Warn("unknown log level, using info")
		return log
	}
	log.Level = lvl
	return log
}

// Discard returns a logger that drops everything, for tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
