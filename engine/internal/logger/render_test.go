package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	r := NewRecorder(nil)
	r.now = fixedClock(time.Date(2024, 11, 2, 8, 7, 59, 0, time.UTC))

	r.Info(CategoryDashboard, "Loaded")
	r.Error(CategoryOrders, "")

	want := "[11-02 08:07 DASHBOARD INFO] Loaded\n" +
		"[11-02 08:07 ORDERS ERROR] null\n"
	require.Equal(t, want, r.RenderText())
}

func TestRenderTextEmpty(t *testing.T) {
	require.Equal(t, "", NewRecorder(nil).RenderText())
	require.Empty(t, NewRecorder(nil).RenderMarkup())
}

func TestRenderMarkupColours(t *testing.T) {
	r := NewRecorder(nil)
	r.now = fixedClock(time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC))

	for _, sev := range Severities() {
		r.Log(CategoryUtils, sev, "msg")
	}

	markup := r.RenderMarkup()
	require.Len(t, markup, r.Count())

	wantColours := []string{"grey", "teal", "black", "purple", "red"}
	for i, line := range markup {
		require.True(t, strings.HasPrefix(line, `<span style="color:`+wantColours[i]+`">`), line)
		require.True(t, strings.HasSuffix(line, "</span>"), line)
	}
	require.Equal(t, `<span style="color:purple">[01-05 23:30 UTILS WARN] msg</span>`, markup[3])
}

func TestRenderMarkupEscapesText(t *testing.T) {
	r := NewRecorder(nil)
	r.now = fixedClock(time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC))
	r.Info(CategoryDevice, `<b>"hot"</b> & cold`)

	require.Equal(t,
		`<span style="color:black">[01-05 23:30 DEVICE INFO] &lt;b&gt;&#34;hot&#34;&lt;/b&gt; &amp; cold</span>`,
		r.RenderMarkup()[0])
}

func TestFormatLineUsesUTC(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 45, 0, 0, time.FixedZone("PLUS3", 3*3600))
	line := FormatLine(LogEntry{Category: CategoryOrders, Severity: SeverityDebug, Text: "x", Timestamp: ts})
	require.Equal(t, "[12-31 20:45 ORDERS DEBUG] x", line)
}

func TestRenderMarkupOutOfRangeSeverity(t *testing.T) {
	r := NewRecorder(nil)
	r.now = fixedClock(time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC))

	r.Log(CategoryDevice, Severity(9), "odd")
	r.Warn(CategoryDevice, "after")

	var markup []string
	require.NotPanics(t, func() { markup = r.RenderMarkup() })
	require.Equal(t, []string{
		`<span style="color:black">[01-05 23:30 DEVICE SEVERITY(9)] odd</span>`,
		`<span style="color:purple">[01-05 23:30 DEVICE WARN] after</span>`,
	}, markup)
}
