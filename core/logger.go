package core

// Logger is the app-wide logging service.
// Implementations may inspect args for well-known types (eg. the logged-in account).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
