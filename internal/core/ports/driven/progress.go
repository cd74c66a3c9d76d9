package driven

// ProgressSink consumes raw progress lines emitted by long-running
// operations ("downloading file 2/5"). Sinks decode and rate-limit as they
// see fit; emitting is always non-blocking and failure-free from the
// caller's point of view.
type ProgressSink interface {
	// Emit hands one raw progress line to the sink.
	Emit(line string)

	// Reset releases anything the sink has bound (progress bars, line
	// state) once the operation finishes.
	Reset()
}

// NopSink discards progress lines.
type NopSink struct{}

// Emit discards the line.
func (NopSink) Emit(string) {}

// Reset does nothing.
func (NopSink) Reset() {}
