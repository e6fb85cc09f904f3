package UI

import (
	"sync/atomic"
	"time"

	"diagnostics-recorder/engine/config"
	"diagnostics-recorder/engine/internal/logger"

	"github.com/charmbracelet/bubbles/textarea"
)

type Tab int
type mode int

type tickMsg time.Time

type Command struct {
	Name        string
	Description string
	Usage       string
	Category    string
}

// severityCounters is fed by a recorder observer, so it must never block
type severityCounters struct {
	counts []atomic.Int64
}

func newSeverityCounters() *severityCounters {
	return &severityCounters{counts: make([]atomic.Int64, len(logger.Severities()))}
}

func (c *severityCounters) observe(_ logger.Category, severity logger.Severity, _ string) {
	if i := int(severity); i >= 0 && i < len(c.counts) {
		c.counts[i].Add(1)
	}
}

func (c *severityCounters) get(severity logger.Severity) int64 {
	if i := int(severity); i >= 0 && i < len(c.counts) {
		return c.counts[i].Load()
	}
	return 0
}

type model struct {
	activeTab          Tab
	mode               mode
	commandInput       string
	commandHistory     []string
	historyIndex       int
	statusMsg          string
	errorMsg           string
	width              int
	height             int
	scrollOffset       int
	logScrollOffset    int
	markupScrollOffset int

	// Editor
	editor      textarea.Model
	isLogView   bool
	editorTitle string

	// Recorder
	recorder *logger.Recorder
	counters *severityCounters

	commands []Command

	// Config
	config     *config.Config
	configPath string
	refresh    time.Duration
}
