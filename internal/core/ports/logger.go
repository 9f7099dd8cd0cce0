package ports

//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks

// Logger is the logging abstraction used across the application.
type Logger interface {
	// Debug logs a message visible only in verbose mode.
	Debug(msg string)
	// Info logs an informational message.
	Info(msg string)
	// Warn logs a warning message.
	Warn(msg string)
	// Error logs an error, expanding wrapped cause chains.
	Error(err error)
}
