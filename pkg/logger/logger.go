// Package logger provides context-aware structured logging on top of logrus.
// Commands configure the global logger once at startup; library code fetches
// a logger from its context with G.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FieldSkillID is the log field carrying the skill a message is about.
const FieldSkillID = "skill_id"

// Format selects the log encoding.
type Format string

// Supported log formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	// G is a shorthand for GetLogger.
	G = GetLogger
	// L is the global logger entry used when the context carries none.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger attaches a logger entry to the context.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger.WithContext(ctx))
}

// GetLogger returns the logger entry stored in ctx, or the global one.
func GetLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return logger
	}
	return L.WithContext(ctx)
}

// WithSkill returns the context logger tagged with a skill ID.
func WithSkill(ctx context.Context, skillID string) *logrus.Entry {
	return G(ctx).WithField(FieldSkillID, skillID)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.Formatter = formatter(FormatText)
	return l
}

// ParseFormat validates a format name. "fmt" is accepted as text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "fmt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unknown log format %q: must be text or json", s)
	}
}

func formatter(format Format) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// Configure applies a level and format to the global logger.
func Configure(level, format string) error {
	return ConfigureLogger(L.Logger, level, format)
}

// ConfigureLogger applies a level and format to logger. Nothing is changed
// when either value is invalid.
func ConfigureLogger(logger *logrus.Logger, level, format string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logFormat, err := ParseFormat(format)
	if err != nil {
		return err
	}

	logger.SetLevel(logLevel)
	logger.Formatter = formatter(logFormat)
	return nil
}

// SetLogOutput sets the output destination for the global logger
func SetLogOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
