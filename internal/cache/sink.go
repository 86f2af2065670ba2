package cache

// Sink receives human-readable trace lines from a Manager. It never
// influences cache behavior.
type Sink interface {
	Tracef(format string, args ...any)
}

// SinkFunc adapts a printf-style function to a Sink.
type SinkFunc func(format string, args ...any)

func (f SinkFunc) Tracef(format string, args ...any) { f(format, args...) }

type nopSink struct{}

func (nopSink) Tracef(string, ...any) {}
