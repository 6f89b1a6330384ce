// Package logger is a thin wrapper around logrus shared by every burst package.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const levelEnvVar = "BURST_LOG_LEVEL"

// Log is the shared logger. It discards output until Init is called.
var Log = newDiscard()

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

// Init points the logger at w with the given level name. BURST_LOG_LEVEL,
// when set and valid, wins over level.
func Init(w io.Writer, level string) error {
	l := logrus.New()
	l.Out = w
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Log = l

	if env := os.Getenv(levelEnvVar); env != "" {
		level = env
	}
	if level == "" {
		level = "info"
	}
	return SetLevel(level)
}

// InitFile opens (or creates) a log file and logs to it.
func InitFile(path, level string) (io.Closer, error) {
	// #nosec G304
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if err := Init(file, level); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

// SetLevel changes the level. Unknown names are rejected and the current
// level is kept.
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	Log.SetLevel(lvl)
	return nil
}
