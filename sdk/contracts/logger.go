package contracts

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// DebugLevel indicates messages useful for troubleshooting event flow.
	DebugLevel LogLevel = iota - 1
	// InfoLevel indicates informational messages about lifecycle progress.
	InfoLevel
	// WarnLevel indicates recoverable situations such as dropped events.
	WarnLevel
	// ErrorLevel indicates failures surfaced to the caller.
	ErrorLevel
)

// Field represents one structured log field.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger provides methods for recording messages at different levels.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
}
