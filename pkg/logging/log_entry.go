package logging

// LogEntry represents a structured log record. Session and model fields are
// populated from the context when present so that every line emitted while
// serving a generation request can be correlated.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Request-scoped fields
	SessionID string // Generation session the log line belongs to
	ModelID   string // The LLM model being used
	Latency   int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
