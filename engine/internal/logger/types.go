package logger

import (
	"sync"
	"time"
)

//
// RECORDER
//

// MaxEntries is the fixed number of entries a Recorder retains
const MaxEntries = 99

// Category identifies the subsystem that emitted an entry
type Category int

const (
	CategoryDashboard Category = iota
	CategoryOrders
	CategoryUtils
	CategoryDevice
)

// Severity represents the importance of a log entry
type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

// LogEntry represents a single recorded entry. Entries are values and are
// never modified after construction.
type LogEntry struct {
	Category  Category
	Severity  Severity
	Text      string
	Timestamp time.Time
}

// Observer is notified synchronously for every appended entry
type Observer func(category Category, severity Severity, text string)

// Sink receives every appended entry, fire-and-forget
type Sink interface {
	Forward(tag string, severity Severity, text string)
}

// Recorder keeps a bounded history of log entries and fans them out to
// observers and a platform sink.
type Recorder struct {
	mu        sync.RWMutex
	ring      []LogEntry
	head      int // index of the oldest entry
	count     int
	observers []Observer
	sink      Sink
	now       func() time.Time
}
