package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, L.Logger, G(ctx).Logger)

	custom := logrus.NewEntry(logrus.New()).WithField("component", "copier")
	ctx = WithLogger(ctx, custom)

	got := G(ctx)
	assert.Equal(t, custom.Logger, got.Logger)
	assert.Equal(t, "copier", got.Data["component"])
}

func TestWithSkill(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	require.NoError(t, ConfigureLogger(l, "info", "json"))

	ctx := WithLogger(context.Background(), logrus.NewEntry(l))
	WithSkill(ctx, "web-framework-react").Warn("skill not found in matrix")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "web-framework-react", entry[FieldSkillID])
	assert.Equal(t, "warning", entry["logLevel"])
	assert.Equal(t, "skill not found in matrix", entry["message"])
	assert.Contains(t, entry, "timestamp")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"fmt", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	l := logrus.New()

	require.NoError(t, ConfigureLogger(l, "debug", "json"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	require.NoError(t, ConfigureLogger(l, "warn", "text"))
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	assert.Error(t, ConfigureLogger(l, "loud", "json"))
	assert.Error(t, ConfigureLogger(l, "error", "xml"))
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	require.NoError(t, ConfigureLogger(l, "warn", "text"))

	entry := logrus.NewEntry(l)
	entry.Info("hidden")
	entry.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
