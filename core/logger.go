package core

// Logger logs application events at the usual levels. Implementations may
// interpret trailing args (an error, a user.User, a map) as structured
// metadata; the std fallback just prints them.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
