package logger

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type call struct {
	Category Category
	Severity Severity
	Text     string
}

type fakeSink struct {
	mu    sync.Mutex
	tags  []string
	calls []call
}

func (f *fakeSink) Forward(tag string, severity Severity, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	f.calls = append(f.calls, call{Severity: severity, Text: text})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func texts(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func TestLogKeepsAppendOrderBelowCapacity(t *testing.T) {
	r := NewRecorder(nil)
	var want []string
	for i := 0; i < MaxEntries; i++ {
		text := fmt.Sprintf("entry %d", i)
		r.Info(CategoryUtils, text)
		want = append(want, text)
	}

	require.Equal(t, MaxEntries, r.Count())
	if diff := cmp.Diff(want, texts(r.Entries())); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestLogEvictsOldestWhenFull(t *testing.T) {
	r := NewRecorder(nil)
	total := MaxEntries*2 + 7
	for i := 0; i < total; i++ {
		r.Debugf(CategoryDevice, "entry %d", i)
	}

	entries := r.Entries()
	require.Len(t, entries, MaxEntries)
	for i, e := range entries {
		require.Equal(t, fmt.Sprintf("entry %d", total-MaxEntries+i), e.Text)
	}
}

func TestSmallRingEviction(t *testing.T) {
	r := newRecorder(3, nil)
	for _, text := range []string{"A", "B", "C", "D"} {
		r.Info(CategoryDashboard, text)
	}

	require.Equal(t, []string{"B", "C", "D"}, texts(r.Entries()))
	require.Equal(t, 3, r.Count())
}

func TestEntryFields(t *testing.T) {
	local := time.Date(2024, 3, 9, 17, 5, 0, 0, time.FixedZone("X", 2*3600))
	r := NewRecorder(nil)
	r.now = fixedClock(local)

	r.Warn(CategoryOrders, "late fill")

	want := []LogEntry{{
		Category:  CategoryOrders,
		Severity:  SeverityWarn,
		Text:      "late fill",
		Timestamp: local.UTC(),
	}}
	if diff := cmp.Diff(want, r.Entries()); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, time.UTC, r.Entries()[0].Timestamp.Location())
}

func TestObserversCalledInRegistrationOrder(t *testing.T) {
	r := NewRecorder(nil)

	var order []int
	var got [][]call
	for k := 0; k < 4; k++ {
		k := k
		got = append(got, nil)
		r.Register(func(c Category, s Severity, text string) {
			order = append(order, k)
			got[k] = append(got[k], call{c, s, text})
		})
	}

	r.Log(CategoryDevice, SeverityError, "link down")

	require.Equal(t, []int{0, 1, 2, 3}, order)
	for k := range got {
		require.Equal(t, []call{{CategoryDevice, SeverityError, "link down"}}, got[k])
	}
}

func TestObserverSeesCommittedEntry(t *testing.T) {
	r := NewRecorder(nil)
	var seen int
	r.Register(func(Category, Severity, string) {
		seen = r.Count()
	})

	r.Info(CategoryUtils, "one")
	require.Equal(t, 1, seen)
}

func TestObserverRegisteredTwiceIsCalledTwice(t *testing.T) {
	r := NewRecorder(nil)
	calls := 0
	obs := func(Category, Severity, string) { calls++ }
	r.Register(obs)
	r.Register(obs)

	r.Info(CategoryUtils, "x")
	require.Equal(t, 2, calls)
}

func TestObserverPanicPropagates(t *testing.T) {
	r := NewRecorder(nil)
	r.Register(func(Category, Severity, string) {
		panic("observer failed")
	})

	require.PanicsWithValue(t, "observer failed", func() {
		r.Info(CategoryDashboard, "boom")
	})

	// entry was committed and the lock released
	require.Equal(t, []string{"boom"}, texts(r.Entries()))
	require.NotEmpty(t, r.RenderText())
}

func TestStatusEmptyTextIsNoop(t *testing.T) {
	sink := &fakeSink{}
	r := NewRecorder(sink)
	notified := 0
	r.Register(func(Category, Severity, string) { notified++ })

	r.Info(CategoryDashboard, "Loaded")
	r.Status(CategoryOrders, -1, "")

	require.Equal(t, []string{"Loaded"}, texts(r.Entries()))
	require.Equal(t, 1, notified)
	require.Len(t, sink.calls, 1)
}

func TestStatusRecordsCode(t *testing.T) {
	r := NewRecorder(nil)
	r.Status(CategoryOrders, 503, "checkout failed")

	entries := r.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, SeverityError, entries[0].Severity)
	require.Equal(t, "checkout failed (code 503)", entries[0].Text)
}

func TestLogForwardsToSink(t *testing.T) {
	sink := &fakeSink{}
	r := NewRecorder(sink)

	r.Info(CategoryDashboard, "Loaded")
	r.Verbose(CategoryDevice, "")

	require.Equal(t, []string{"DiagRecorder_DASHBOARD", "DiagRecorder_DEVICE"}, sink.tags)
	require.Equal(t, []call{
		{Severity: SeverityInfo, Text: "Loaded"},
		{Severity: SeverityVerbose, Text: ""},
	}, sink.calls)
}

type panicError struct{}

func (*panicError) Error() string { panic("no description") }

func TestErrorWithCause(t *testing.T) {
	r := NewRecorder(nil)

	r.ErrorWithCause(CategoryOrders, "submit failed", fmt.Errorf("timeout"))
	r.ErrorWithCause(CategoryOrders, "nil cause", nil)
	r.ErrorWithCause(CategoryOrders, "broken cause", &panicError{})
	r.ErrorWithCause(CategoryDevice, "read failed", errors.Wrap(errors.New("eof"), "serial"))

	entries := r.Entries()
	require.Len(t, entries, 4)
	require.Equal(t, "submit failed: timeout", entries[0].Text)
	require.Equal(t, "nil cause: ", entries[1].Text)
	require.Equal(t, "broken cause: ", entries[2].Text)

	traced := entries[3].Text
	require.True(t, strings.HasPrefix(traced, "read failed: serial: eof\n"), traced)
	require.Contains(t, traced, "TestErrorWithCause")
	for _, e := range entries {
		require.Equal(t, SeverityError, e.Severity)
	}
}

func TestConcurrentAppends(t *testing.T) {
	r := NewRecorder(nil)
	var notified sync.Map

	r.Register(func(_ Category, _ Severity, text string) {
		notified.Store(text, true)
	})

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.Infof(Categories()[w%len(Categories())], "w%d-%d", w, i)
				_ = r.RenderText()
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, MaxEntries, r.Count())
	require.Len(t, r.RenderMarkup(), MaxEntries)

	n := 0
	notified.Range(func(_, _ interface{}) bool { n++; return true })
	require.Equal(t, workers*perWorker, n)

	// per worker, retained entries must still be in append order
	last := map[int]int{}
	for _, e := range r.Entries() {
		var w, i int
		_, err := fmt.Sscanf(e.Text, "w%d-%d", &w, &i)
		require.NoError(t, err)
		if prev, ok := last[w]; ok {
			require.Greater(t, i, prev)
		}
		last[w] = i
	}
}
