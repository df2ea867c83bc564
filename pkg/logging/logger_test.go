package logging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput collects entries for assertions.
type captureOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (c *captureOutput) Write(e LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captureOutput) Sync() error  { return nil }
func (c *captureOutput) Close() error { return nil }

func (c *captureOutput) all() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func TestLoggerSeverityFiltering(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{capture}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := capture.all()
	require.Len(t, entries, 2)
	assert.Equal(t, WARN, entries[0].Severity)
	assert.Equal(t, ERROR, entries[1].Severity)
}

func TestLoggerContextFields(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{capture}})

	ctx := WithSessionID(context.Background(), "sess-42")
	ctx = WithModelID(ctx, "gemini-2.0-flash")
	logger.Info(ctx, "generation started")

	entries := capture.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "sess-42", entries[0].SessionID)
	assert.Equal(t, "gemini-2.0-flash", entries[0].ModelID)
}

func TestLoggerDefaultFields(t *testing.T) {
	capture := &captureOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{capture},
		DefaultFields: map[string]interface{}{"service": "aipg"},
	})

	logger.Info(context.Background(), "hello")

	entries := capture.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "aipg", entries[0].Fields["service"])
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))

	// Configuration files spell levels in lowercase.
	assert.Equal(t, DEBUG, ParseSeverity("debug"))
	assert.Equal(t, INFO, ParseSeverity("info"))
	assert.Equal(t, WARN, ParseSeverity("warn"))
	assert.Equal(t, ERROR, ParseSeverity("error"))
	assert.Equal(t, FATAL, ParseSeverity("fatal"))
}

func TestFormatFieldsTruncatesPrompts(t *testing.T) {
	long := strings.Repeat("x", 500)
	formatted := formatFields(map[string]interface{}{"prompt": long})
	assert.Less(t, len(formatted), 130)
	assert.Contains(t, formatted, "...")
}
