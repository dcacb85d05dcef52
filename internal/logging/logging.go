package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level and output format.
type Config struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// New builds a logger writing to w (stderr when nil).
func New(cfg Config, w io.Writer) (*logrus.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return l, nil
}

// Or returns e, or a logger that drops everything when e is nil.
func Or(e *logrus.Entry) *logrus.Entry {
	if e != nil {
		return e
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
