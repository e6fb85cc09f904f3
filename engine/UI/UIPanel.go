package UI

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"diagnostics-recorder/engine/config"
	"diagnostics-recorder/engine/internal/logger"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true)

	activeTabStyle = tabStyle.Copy().
			Foreground(lipgloss.Color("36")).
			Background(lipgloss.Color("235"))

	inactiveTabStyle = tabStyle.Copy().
				Foreground(lipgloss.Color("240"))

	contentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	commandBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("234")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	menuItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// terminal counterparts of logger.SeverityColor
var severityStyles = map[logger.Severity]lipgloss.Style{
	logger.SeverityVerbose: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	logger.SeverityDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("30")),
	logger.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "252"}),
	logger.SeverityWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
	logger.SeverityError:   errorStyle,
}

const (
	TabLog Tab = iota
	TabMarkup
	TabCommands
)

const (
	modeNormal mode = iota
	modeCommand
	modeEditor
)

// scrolled to the bottom until the user scrolls up
const followTail = 1000000

// InitialModel builds the diagnostics screen and registers its observer on rec
func InitialModel(rec *logger.Recorder, cfg *config.Config, configPath string) model {
	if cfg == nil {
		cfg = config.Default()
	}

	counters := newSeverityCounters()
	rec.Register(counters.observe)

	ta := textarea.New()
	ta.Placeholder = "Config content..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	refresh := time.Duration(cfg.UI.RefreshMillis) * time.Millisecond
	if refresh <= 0 {
		refresh = 250 * time.Millisecond
	}

	rec.Infof(logger.CategoryUtils, "Diagnostics screen opened, history holds %d entries", logger.MaxEntries)

	return model{
		activeTab:          TabLog,
		mode:               modeNormal,
		recorder:           rec,
		counters:           counters,
		config:             cfg,
		configPath:         configPath,
		refresh:            refresh,
		logScrollOffset:    followTail,
		markupScrollOffset: followTail,
		commandHistory:     []string{},
		editor:             ta,
		commands: []Command{
			{Name: "emit", Description: "Append an entry", Usage: ":emit <category> <severity> <text>", Category: "Recorder"},
			{Name: "status", Description: "Append a status code (no-op without text)", Usage: ":status <category> <code> [text]", Category: "Recorder"},
			{Name: "export", Description: "Export history to a file", Usage: ":export <text|markup>", Category: "Recorder"},
			{Name: "copy", Description: "Copy history text to clipboard", Usage: ":copy", Category: "Recorder"},
			{Name: "log", Description: "Open history in the text view", Usage: ":log", Category: "Recorder"},
			{Name: "config", Description: "Edit configuration", Usage: ":config", Category: "System"},
			{Name: "logs", Description: "Switch to log tab", Usage: ":logs", Category: "Navigation"},
			{Name: "markup", Description: "Switch to markup tab", Usage: ":markup", Category: "Navigation"},
			{Name: "help", Description: "Show commands page", Usage: ":help", Category: "Navigation"},
			{Name: "quit", Description: "Exit the application", Usage: ":quit or :q", Category: "System"},
		},
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width-8, 20))
		m.editor.SetHeight(max(msg.Height-12, 3))
		return m, nil

	case tickMsg:
		// history is read on every View, the tick only triggers a redraw
		return m, tickCmd(m.refresh)
	}

	return m, nil
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C copies inside the editor
	if msg.Type == tea.KeyCtrlC && m.mode != modeEditor {
		return m, tea.Quit
	}

	switch m.mode {
	case modeNormal:
		return m.handleNormalMode(msg)
	case modeCommand:
		return m.handleCommandMode(msg)
	case modeEditor:
		return m.handleEditorMode(msg)
	}

	return m, nil
}

func (m model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMsg = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "a":
		if m.activeTab > 0 {
			m.activeTab--
			m.scrollOffset = 0
		}

	case "d":
		if m.activeTab < TabCommands {
			m.activeTab++
			m.scrollOffset = 0
		}

	case "1":
		m.activeTab = TabLog
	case "2":
		m.activeTab = TabMarkup
	case "3":
		m.activeTab = TabCommands
		m.scrollOffset = 0

	case "w", "up":
		switch m.activeTab {
		case TabLog:
			m.logScrollOffset = boundScroll(m.logScrollOffset, m.recorder.Count(), m.panelLines()) - 1
		case TabMarkup:
			m.markupScrollOffset = boundScroll(m.markupScrollOffset, m.recorder.Count(), m.panelLines()) - 1
		default:
			m.scrollOffset--
		}
		m.clampOffsets()

	case "s", "down":
		switch m.activeTab {
		case TabLog:
			m.logScrollOffset = boundScroll(m.logScrollOffset, m.recorder.Count(), m.panelLines()) + 1
		case TabMarkup:
			m.markupScrollOffset = boundScroll(m.markupScrollOffset, m.recorder.Count(), m.panelLines()) + 1
		default:
			m.scrollOffset++
		}

	case "W":
		m.logScrollOffset = 0
		m.markupScrollOffset = 0
		m.scrollOffset = 0

	case "S":
		m.logScrollOffset = followTail
		m.markupScrollOffset = followTail

	case ":", "/":
		m.mode = modeCommand
		m.commandInput = ":"
	}

	return m, nil
}

func (m *model) clampOffsets() {
	if m.logScrollOffset < 0 {
		m.logScrollOffset = 0
	}
	if m.markupScrollOffset < 0 {
		m.markupScrollOffset = 0
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.commandInput = ""
		m.errorMsg = ""

	case tea.KeyEnter:
		// Save to history if not empty and not identical to last entry
		rawCmd := strings.TrimPrefix(m.commandInput, ":")
		if rawCmd != "" {
			if len(m.commandHistory) == 0 || m.commandHistory[len(m.commandHistory)-1] != rawCmd {
				m.commandHistory = append(m.commandHistory, rawCmd)
			}
		}
		m.historyIndex = len(m.commandHistory)

		var cmd tea.Cmd
		m, cmd = m.executeCommand()
		if m.mode == modeCommand {
			m.mode = modeNormal
		}
		m.commandInput = ""
		return m, cmd

	case tea.KeyUp:
		if m.historyIndex > 0 {
			m.historyIndex--
			m.commandInput = ":" + m.commandHistory[m.historyIndex]
		}

	case tea.KeyDown:
		if m.historyIndex < len(m.commandHistory)-1 {
			m.historyIndex++
			m.commandInput = ":" + m.commandHistory[m.historyIndex]
		} else if m.historyIndex == len(m.commandHistory)-1 {
			m.historyIndex = len(m.commandHistory)
			m.commandInput = ":"
		}

	case tea.KeyBackspace:
		if len(m.commandInput) > 1 {
			m.commandInput = m.commandInput[:len(m.commandInput)-1]
		}

	case tea.KeySpace:
		m.commandInput += " "

	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput += msg.String()
		}
	}

	return m, nil
}

func (m *model) handleEditorMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.isLogView {
		switch msg.Type {
		case tea.KeyCtrlE:
			filename, err := m.exportHistory("text")
			if err != nil {
				m.statusMsg = errorStyle.Render("Export failed: " + err.Error())
			} else {
				m.statusMsg = successStyle.Render("Log exported to " + filename)
			}
			return *m, nil

		case tea.KeyCtrlC:
			if err := clipboard.WriteAll(m.editor.Value()); err == nil {
				m.statusMsg = "Copied all log text to clipboard"
			}
			return *m, nil

		case tea.KeyCtrlA:
			m.editor.SetCursor(len(m.editor.Value()))
			m.statusMsg = "Cursor moved to end of log"
			return *m, nil

		case tea.KeyEsc:
			m.mode = modeNormal
			m.isLogView = false
			m.statusMsg = ""
			return *m, nil
		}
		// the log view is read-only apart from the shortcuts above
		return *m, nil
	}

	// Config Editor Logic
	switch msg.Type {
	case tea.KeyCtrlS:
		m.saveEditorConfig()
		return *m, nil

	case tea.KeyCtrlC:
		if err := clipboard.WriteAll(m.editor.Value()); err == nil {
			m.statusMsg = "Copied all text to clipboard"
		}
		return *m, nil

	case tea.KeyCtrlV:
		if text, err := clipboard.ReadAll(); err == nil {
			m.editor.InsertString(text)
			m.statusMsg = "Pasted from clipboard"
		}
		return *m, nil

	case tea.KeyEsc:
		m.mode = modeNormal
		m.statusMsg = ""
		return *m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return *m, cmd
}

// saveEditorConfig validates the editor content before writing it
func (m *model) saveEditorConfig() bool {
	var cfg config.Config
	if err := json.Unmarshal([]byte(m.editor.Value()), &cfg); err != nil {
		m.errorMsg = "Invalid config: " + err.Error()
		m.recorder.Errorf(logger.CategoryUtils, "Config save rejected: %v", err)
		return false
	}
	if err := cfg.Validate(); err != nil {
		m.errorMsg = "Invalid config: " + err.Error()
		m.recorder.Errorf(logger.CategoryUtils, "Config save rejected: %v", err)
		return false
	}
	if err := os.WriteFile(m.configPath, []byte(m.editor.Value()), 0600); err != nil {
		m.errorMsg = "Failed to save config: " + err.Error()
		m.recorder.ErrorWithCause(logger.CategoryUtils, "Config save failed", err)
		return false
	}
	m.statusMsg = successStyle.Render("Config saved, restart to apply")
	m.recorder.Info(logger.CategoryUtils, "Config saved via integrated editor")
	return true
}

func (m model) executeCommand() (model, tea.Cmd) {
	m.logScrollOffset = followTail
	m.markupScrollOffset = followTail

	cmd := strings.TrimPrefix(m.commandInput, ":")
	parts := strings.Fields(cmd)

	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "q", "quit", "Q":
		return m, tea.Quit

	case "emit":
		if len(parts) < 3 {
			m.errorMsg = "Usage: :emit <category> <severity> <text>"
			return m, nil
		}
		category, err := logger.ParseCategory(parts[1])
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		severity, err := logger.ParseSeverity(parts[2])
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.recorder.Log(category, severity, strings.Join(parts[3:], " "))
		m.activeTab = TabLog

	case "status":
		if len(parts) < 3 {
			m.errorMsg = "Usage: :status <category> <code> [text]"
			return m, nil
		}
		category, err := logger.ParseCategory(parts[1])
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		code, err := strconv.Atoi(parts[2])
		if err != nil {
			m.errorMsg = "Invalid code format. Use a number"
			return m, nil
		}
		text := strings.Join(parts[3:], " ")
		m.recorder.Status(category, code, text)
		if text == "" {
			m.statusMsg = dimStyle.Render("Empty status diagnostic, nothing recorded")
		}

	case "export":
		if len(parts) < 2 {
			m.errorMsg = "Usage: :export <text|markup>"
			return m, nil
		}
		filename, err := m.exportHistory(parts[1])
		if err != nil {
			m.errorMsg = "Export failed: " + err.Error()
			return m, nil
		}
		m.statusMsg = successStyle.Render("History exported to " + filename)
		m.recorder.Infof(logger.CategoryUtils, "History exported to %s", filename)

	case "copy":
		if err := clipboard.WriteAll(m.recorder.RenderText()); err != nil {
			m.errorMsg = "Copy failed: " + err.Error()
			return m, nil
		}
		m.statusMsg = successStyle.Render("History copied to clipboard")

	case "log":
		m.mode = modeEditor
		m.isLogView = true
		m.editorTitle = fmt.Sprintf("History (%d/%d)", m.recorder.Count(), logger.MaxEntries)
		m.editor.SetValue(m.recorder.RenderText())

	case "config":
		content, err := os.ReadFile(m.configPath)
		if err != nil {
			// fall back to the running config
			content, _ = json.MarshalIndent(m.config, "", "  ")
		}
		m.mode = modeEditor
		m.isLogView = false
		m.editorTitle = "Config: " + m.configPath
		m.editor.SetValue(string(content))

	case "logs":
		m.activeTab = TabLog
	case "markup":
		m.activeTab = TabMarkup
	case "help":
		m.activeTab = TabCommands
		m.scrollOffset = 0

	default:
		m.errorMsg = "Unknown command: " + parts[0]
	}

	return m, nil
}

// exportHistory writes the rendered history and returns the file name
func (m model) exportHistory(kind string) (string, error) {
	var content, ext string
	switch kind {
	case "text", "log":
		content, ext = m.recorder.RenderText(), ".txt"
	case "markup", "html":
		content = "<html><body>\n" + strings.Join(m.recorder.RenderMarkup(), "<br>\n") + "\n</body></html>\n"
		ext = ".html"
	default:
		return "", fmt.Errorf("unknown export kind %q", kind)
	}

	dir := m.config.UI.ExportDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	filename := filepath.Join(dir, "history_"+time.Now().Format("20060102_150405.000")+ext)
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return filename, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		m.renderContent(),
		m.renderStatusBar(),
		m.renderCommandBar(),
	)
}

func (m model) renderTabs() string {
	tabs := []string{}

	tabNames := []string{"Log", "Markup", "Commands"}
	for i, name := range tabNames {
		style := inactiveTabStyle
		if Tab(i) == m.activeTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d:%s", i+1, name)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) contentHeight() int {
	return m.height - 5
}

// panelLines is the number of entries visible in a log panel
func (m model) panelLines() int {
	innerHeight := m.contentHeight() - 2
	if innerHeight < 4 {
		innerHeight = 4
	}
	lines := innerHeight - 4
	if lines < 1 {
		lines = 1
	}
	return lines
}

func (m model) renderContent() string {
	contentHeight := m.contentHeight()

	if m.mode == modeEditor {
		footer := "[Ctrl+S: Save | Ctrl+V: Paste | ESC: Close]"
		if m.isLogView {
			footer = "[Ctrl+E: Export to File | Ctrl+C: Copy | Ctrl+A: End | ESC: Exit]"
		}
		return contentStyle.
			Width(m.width - 4).
			Height(contentHeight).
			Render(fmt.Sprintf("═══ %s ═══\n\n%s\n\n%s", m.editorTitle, m.editor.View(), footer))
	}

	switch m.activeTab {
	case TabLog:
		lines := formatStyledEntries(m.recorder.Entries())
		return m.renderPanel(m.width, contentHeight, "History", lines, m.logScrollOffset)
	case TabMarkup:
		return m.renderPanel(m.width, contentHeight, "Markup", m.recorder.RenderMarkup(), m.markupScrollOffset)
	case TabCommands:
		return contentStyle.Width(m.width - 4).Render(m.renderCommandsScrollable(contentHeight))
	}
	return ""
}

// formatStyledEntries colours each rendered line by severity
func formatStyledEntries(entries []logger.LogEntry) []string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		style, ok := severityStyles[entry.Severity]
		if !ok {
			style = dimStyle
		}
		// multi-line causes are shown on one line in the panel
		line := strings.ReplaceAll(logger.FormatLine(entry), "\n", " ⏎ ")
		lines[i] = style.Render(line)
	}
	return lines
}

// boundScroll limits offset to the last full page. Unlike clampScroll it
// does not pin offsets near the tail, so key presses can move off it.
func boundScroll(offset, total, available int) int {
	maxScroll := max(total-available, 0)
	return max(min(offset, maxScroll), 0)
}

// clampScroll bounds offset for total lines shown available at a time,
// keeping the view pinned to the tail when it was already near it.
func clampScroll(offset, total, available int) int {
	maxScroll := total - available
	if maxScroll < 0 {
		maxScroll = 0
	}
	if offset >= maxScroll-2 {
		return maxScroll
	}
	if offset < 0 {
		return 0
	}
	return offset
}

func (m model) renderPanel(width, height int, title string, lines []string, scrollOffset int) string {
	var logContent strings.Builder

	innerHeight := height - 2
	if innerHeight < 4 {
		innerHeight = 4
	}
	availableLines := m.panelLines()

	offset := clampScroll(scrollOffset, len(lines), availableLines)
	endIdx := offset + availableLines
	if endIdx > len(lines) {
		endIdx = len(lines)
	}

	logWidth := width - 4
	if logWidth < 20 {
		logWidth = 20
	}

	visible := lines[offset:endIdx]
	truncate := lipgloss.NewStyle().MaxWidth(logWidth)
	for _, line := range visible {
		logContent.WriteString(truncate.Render(line))
		logContent.WriteString("\n")
	}

	if len(visible) < availableLines {
		logContent.WriteString(strings.Repeat("\n", availableLines-len(visible)))
	}

	maxScroll := len(lines) - availableLines
	scrollPercent := 0.0
	if maxScroll > 0 {
		scrollPercent = float64(offset) / float64(maxScroll) * 100
	}
	indicator := fmt.Sprintf("[%d/%d %.0f%%]", offset+1, len(lines), scrollPercent)
	if len(lines) <= availableLines {
		indicator = "[All]"
	}

	logContent.WriteString("\n" + dimStyle.
		Align(lipgloss.Right).
		Width(logWidth).
		Render(indicator))

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Width(width - 4).
		Align(lipgloss.Center)

	panel := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s (%d/%d)", title, len(lines), logger.MaxEntries)),
		strings.Repeat("─", width-4),
		logContent.String(),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(width - 2).
		Height(innerHeight).
		Padding(0, 1).
		Render(panel)
}

func (m model) renderCommandsScrollable(viewHeight int) string {
	var lines []string
	lastCategory := ""
	for _, c := range m.commands {
		if c.Category != lastCategory {
			if lastCategory != "" {
				lines = append(lines, "")
			}
			lines = append(lines, menuItemStyle.Render(c.Category))
			lastCategory = c.Category
		}
		lines = append(lines, fmt.Sprintf("  %-10s %-40s %s", c.Name, c.Usage, dimStyle.Render(c.Description)))
	}

	available := viewHeight - 2
	if available < 1 {
		available = 1
	}
	start := m.scrollOffset
	if start > len(lines)-available {
		start = len(lines) - available
	}
	if start < 0 {
		start = 0
	}
	end := start + available
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func (m model) renderStatusBar() string {
	count := m.recorder.Count()
	left := fmt.Sprintf("%s %d/%d entries",
		successStyle.Render("●"), count, logger.MaxEntries)

	var seen []string
	for _, sev := range logger.Severities() {
		style := severityStyles[sev]
		seen = append(seen, style.Render(fmt.Sprintf("%s:%d", sev.String()[:1], m.counters.get(sev))))
	}
	right := "seen " + strings.Join(seen, " ")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}
	statusText := left + strings.Repeat(" ", spacing) + right

	if m.statusMsg != "" {
		statusText = m.statusMsg
	}

	return statusBarStyle.Width(m.width).Render(statusText)
}

func (m model) renderCommandBar() string {
	var content string
	switch m.mode {
	case modeCommand:
		content = m.commandInput
		if m.errorMsg != "" {
			content += "  " + errorStyle.Render(m.errorMsg)
		}
	case modeEditor:
		content = "EDITOR: 'Ctrl+S' to save, 'ESC' to exit"
		if m.isLogView {
			content = "HISTORY: read-only, 'ESC' to exit"
		}
		if m.errorMsg != "" {
			content += "  " + errorStyle.Render(m.errorMsg)
		}
	default:
		content = "w/s to scroll, W=top, S=bottom, :=command, a/d or 1-3 to switch tabs, q=quit"
		if m.errorMsg != "" {
			content = errorStyle.Render(m.errorMsg)
		}
	}

	return commandBarStyle.Width(m.width).Render(content)
}

// NewProgram wraps the diagnostics model in a full-screen bubbletea program
func NewProgram(rec *logger.Recorder, cfg *config.Config, configPath string) *tea.Program {
	return tea.NewProgram(InitialModel(rec, cfg, configPath), tea.WithAltScreen())
}
