package logger

import (
	"fmt"
	"html"
	"strings"
)

const lineTimeLayout = "01-02 15:04"

// FormatLine renders one entry as "[MM-dd HH:mm CATEGORY SEVERITY] text"
func FormatLine(entry LogEntry) string {
	text := entry.Text
	if text == "" {
		text = "null"
	}
	return fmt.Sprintf("[%s %s %s] %s",
		entry.Timestamp.UTC().Format(lineTimeLayout),
		entry.Category,
		entry.Severity,
		text)
}

// RenderText returns the history as text, one line per entry, oldest first
func (r *Recorder) RenderText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, entry := range r.snapshot() {
		b.WriteString(FormatLine(entry))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderMarkup returns one colour-coded span per entry, oldest first
func (r *Recorder) RenderMarkup() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.snapshot()
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = fmt.Sprintf(`<span style="color:%s">%s</span>`,
			SeverityColor(entry.Severity),
			html.EscapeString(FormatLine(entry)))
	}
	return out
}
