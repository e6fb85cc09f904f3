package logger

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// SinkTagPrefix is prepended to the category name when forwarding to the sink
const SinkTagPrefix = "DiagRecorder_"

// NewRecorder creates a recorder holding at most MaxEntries entries.
// sink may be nil.
func NewRecorder(sink Sink) *Recorder {
	return newRecorder(MaxEntries, sink)
}

func newRecorder(capacity int, sink Sink) *Recorder {
	return &Recorder{
		ring: make([]LogEntry, capacity),
		sink: sink,
		now:  time.Now,
	}
}

// Register adds an observer. Observers are called in registration order.
func (r *Recorder) Register(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, observer)
}

// Log appends an entry, evicting the oldest one when the history is full,
// then forwards it to the sink and notifies observers on the caller's
// goroutine. A panicking observer propagates to the caller.
func (r *Recorder) Log(category Category, severity Severity, text string) {
	entry := LogEntry{
		Category:  category,
		Severity:  severity,
		Text:      text,
		Timestamp: r.now().UTC(),
	}

	observers := r.commit(entry)

	if r.sink != nil {
		r.sink.Forward(SinkTagPrefix+category.String(), severity, text)
	}
	for _, observer := range observers {
		observer(category, severity, text)
	}
}

// commit inserts entry and returns the observers to notify
func (r *Recorder) commit(entry LogEntry) []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := len(r.ring)
	if r.count == size {
		// overwrite the oldest slot and advance head
		r.ring[r.head] = entry
		r.head = (r.head + 1) % size
	} else {
		r.ring[(r.head+r.count)%size] = entry
		r.count++
	}
	return r.observers
}

// Verbose logs a verbose message
func (r *Recorder) Verbose(category Category, text string) {
	r.Log(category, SeverityVerbose, text)
}

// Verbosef logs a verbose message with formatting
func (r *Recorder) Verbosef(category Category, format string, args ...interface{}) {
	r.Log(category, SeverityVerbose, fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (r *Recorder) Debug(category Category, text string) {
	r.Log(category, SeverityDebug, text)
}

// Debugf logs a debug message with formatting
func (r *Recorder) Debugf(category Category, format string, args ...interface{}) {
	r.Log(category, SeverityDebug, fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (r *Recorder) Info(category Category, text string) {
	r.Log(category, SeverityInfo, text)
}

// Infof logs an informational message with formatting
func (r *Recorder) Infof(category Category, format string, args ...interface{}) {
	r.Log(category, SeverityInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (r *Recorder) Warn(category Category, text string) {
	r.Log(category, SeverityWarn, text)
}

// Warnf logs a warning message with formatting
func (r *Recorder) Warnf(category Category, format string, args ...interface{}) {
	r.Log(category, SeverityWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message
func (r *Recorder) Error(category Category, text string) {
	r.Log(category, SeverityError, text)
}

// Errorf logs an error message with formatting
func (r *Recorder) Errorf(category Category, format string, args ...interface{}) {
	r.Log(category, SeverityError, fmt.Sprintf(format, args...))
}

// ErrorWithCause logs an error message followed by the description of err
// and, when the chain carries one, its stack trace.
func (r *Recorder) ErrorWithCause(category Category, text string, err error) {
	r.Log(category, SeverityError, text+": "+describeError(err))
}

// Status logs a status code with its diagnostic message. An empty message
// is a no-op: nothing is recorded, forwarded or observed.
func (r *Recorder) Status(category Category, code int, text string) {
	if text == "" {
		return
	}
	r.Log(category, SeverityError, fmt.Sprintf("%s (code %d)", text, code))
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// describeError never panics; a nil error or a failing Error() yields "".
func describeError(err error) (desc string) {
	if err == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			desc = ""
		}
	}()

	desc = err.Error()
	var st stackTracer
	if stderrors.As(err, &st) {
		desc += fmt.Sprintf("%+v", st.StackTrace())
	}
	return desc
}

// Entries returns a copy of the history, oldest first
func (r *Recorder) Entries() []LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

func (r *Recorder) snapshot() []LogEntry {
	entries := make([]LogEntry, r.count)
	for i := range entries {
		entries[i] = r.ring[(r.head+i)%len(r.ring)]
	}
	return entries
}

// Count returns the number of retained entries
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
