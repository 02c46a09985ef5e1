// File: internal/services/user_services/types.go
package user_services

// Logger interface for all user services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Helper function for safe string slicing in log fields.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maskIdentifier truncates an identifier for log output so full emails and
// usernames never land in logs.
func maskIdentifier(s string) string {
	return s[:minInt(4, len(s))] + "****"
}
