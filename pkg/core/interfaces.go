package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards every message
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}
