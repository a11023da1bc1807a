package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mathmusci/optivenue/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger. Output defaults to stdout.
func Setup(cfg *config.LogConfig, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch cfg.Format {
	case "", "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if out == nil {
		out = os.Stdout
	}
	logrus.SetOutput(out)
	logrus.SetLevel(level)
	return nil
}
