// Package tui is the reference Viewer Contract (C8) consumer: a
// terminal dashboard listing watched paths and rendering the selected
// path's most recent Snapshot as a colored diff.
package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/cursor"
	"charm.land/lipgloss/v2"

	"github.com/xonecas/autostash/internal/delta"
	"github.com/xonecas/autostash/internal/highlight"
	"github.com/xonecas/autostash/internal/store"
	"github.com/xonecas/autostash/internal/viewer"
)

const syntaxTheme = "github-dark"

// windowLabels names each store.TimeWindow for the status bar, in the
// order the "1".."4" keys select them.
var windowLabels = []string{"minute", "hour", "day", "week"}

// Model is the bubbletea model backing the reference dashboard.
type Model struct {
	contract viewer.Contract

	views  []*store.FileView
	cursor int
	window store.TimeWindow

	width, height int
	styles        Styles
	listCursor    cursor.Model

	quitting bool
}

// New builds the reference dashboard Model over a Viewer Contract.
func New(contract viewer.Contract) tea.Model {
	c := cursor.New()
	c.SetMode(cursor.CursorBlink)
	c.SetChar("▶")
	c.Focus()
	return Model{
		contract:   contract,
		styles:     DefaultStyles(),
		listCursor: c,
	}
}

type viewsMsg []*store.FileView

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForViews(m.contract), m.listCursor.Blink())
}

// waitForViews blocks on the Contract's single-slot Views channel and
// resubscribes after every delivery, per the Communication Fabric's
// coalescing publish semantics.
func waitForViews(c viewer.Contract) tea.Cmd {
	return func() tea.Msg {
		views, ok := <-c.Views()
		if !ok {
			return nil
		}
		return viewsMsg(views)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case viewsMsg:
		m.views = msg
		if m.cursor >= len(m.views) {
			m.cursor = len(m.views) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, waitForViews(m.contract)

	case tea.KeyPressMsg:
		if handler := m.keyPressHandlers()[msg.Keystroke()]; handler != nil {
			return handler(&m)
		}
	}

	var cmd tea.Cmd
	m.listCursor, cmd = m.listCursor.Update(msg)
	return m, cmd
}

func (m *Model) keyPressHandlers() map[string]func(*Model) (Model, tea.Cmd) {
	return map[string]func(*Model) (Model, tea.Cmd){
		"ctrl+c": (*Model).handleQuit,
		"q":      (*Model).handleQuit,
		"up":     (*Model).handleUp,
		"k":      (*Model).handleUp,
		"down":   (*Model).handleDown,
		"j":      (*Model).handleDown,
		"u":      undoHandler(1),
		"U":      undoHandler(5),
		"r":      redoHandler(1),
		"R":      redoHandler(5),
		"1":      windowHandler(store.WindowMinute),
		"2":      windowHandler(store.WindowHour),
		"3":      windowHandler(store.WindowDay),
		"4":      windowHandler(store.WindowWeek),
	}
}

func (m *Model) handleQuit() (Model, tea.Cmd) {
	m.quitting = true
	m.contract.Shutdown()
	return *m, tea.Quit
}

func (m *Model) handleUp() (Model, tea.Cmd) {
	if m.cursor > 0 {
		m.cursor--
	}
	return *m, nil
}

func (m *Model) handleDown() (Model, tea.Cmd) {
	if m.cursor < len(m.views)-1 {
		m.cursor++
	}
	return *m, nil
}

// undoHandler returns a key handler bound to a fixed step count, so
// the "u"/"U" keys share one code path at different magnitudes.
func undoHandler(n uint) func(*Model) (Model, tea.Cmd) {
	return func(m *Model) (Model, tea.Cmd) {
		if v := m.selected(); v != nil {
			m.contract.Undo(v.Path, n)
		}
		return *m, nil
	}
}

func redoHandler(n uint) func(*Model) (Model, tea.Cmd) {
	return func(m *Model) (Model, tea.Cmd) {
		if v := m.selected(); v != nil {
			m.contract.Redo(v.Path, n)
		}
		return *m, nil
	}
}

func windowHandler(w store.TimeWindow) func(*Model) (Model, tea.Cmd) {
	return func(m *Model) (Model, tea.Cmd) {
		m.window = w
		m.contract.SetWindow(w)
		return *m, nil
	}
}

func (m Model) selected() *store.FileView {
	if m.cursor < 0 || m.cursor >= len(m.views) {
		return nil
	}
	return m.views[m.cursor]
}

const listWidth = 32

func (m Model) View() tea.View {
	content := m.renderContent()
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderContent() string {
	if m.width == 0 {
		return ""
	}
	contentH := m.height - 1
	if contentH < 1 {
		contentH = 1
	}

	listLines := m.renderFileList(contentH)
	diffLines := m.renderDiff(m.width-listWidth-1, contentH)

	var b strings.Builder
	for row := 0; row < contentH; row++ {
		writePadded(&b, listLines, row, listWidth, m.styles.BgFill)
		b.WriteString(m.styles.Border.Render("│"))
		writePadded(&b, diffLines, row, m.width-listWidth-1, m.styles.BgFill)
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func writePadded(b *strings.Builder, lines []string, row, width int, bg lipgloss.Style) {
	if row < len(lines) {
		line := lines[row]
		lw := lipgloss.Width(line)
		b.WriteString(line)
		if lw < width {
			b.WriteString(bg.Render(strings.Repeat(" ", width-lw)))
		}
		return
	}
	b.WriteString(bg.Render(strings.Repeat(" ", width)))
}

func (m Model) renderFileList(height int) []string {
	if len(m.views) == 0 {
		return []string{m.styles.Muted.Render("(no watched files yet)")}
	}
	sorted := make([]*store.FileView, len(m.views))
	copy(sorted, m.views)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i] == nil || sorted[j] == nil {
			return sorted[j] == nil && sorted[i] != nil
		}
		return sorted[i].Path < sorted[j].Path
	})

	lines := make([]string, 0, len(sorted))
	for i, v := range sorted {
		if v == nil {
			continue
		}
		row := fmt.Sprintf("%d snapshots  %s", len(v.Snapshots), v.Path)
		row = wrapANSI(row, listWidth-2)[0]
		if i == m.cursor {
			m.listCursor.TextStyle = m.styles.Selection
			lines = append(lines, m.listCursor.View()+m.styles.Selection.Render(row))
		} else {
			lines = append(lines, "  "+m.styles.Text.Render(row))
		}
	}
	return lines
}

func (m Model) renderDiff(width, height int) []string {
	v := m.selected()
	if v == nil || len(v.Snapshots) == 0 {
		return []string{m.styles.Muted.Render("no snapshots in the active window")}
	}

	latest := v.Snapshots[0]
	before, after := buildLines(latest.Changes)
	markers := SnapshotMarkers(before, after)

	body := highlight.Render(strings.Join(after, "\n"), v.Path, syntaxTheme, string(ColorBg))
	rendered := highlight.SplitLines(body)

	out := make([]string, 0, len(rendered))
	for i, line := range rendered {
		mark, ok := markers[i]
		out = append(out, m.gutterFor(mark, ok)+line)
	}
	wrapped := make([]string, 0, len(out))
	for _, line := range out {
		wrapped = append(wrapped, wrapANSI(line, width)...)
	}
	if width > 0 {
		return wrapped
	}
	return out
}

func (m Model) gutterFor(mark GutterMark, ok bool) string {
	if !ok {
		return m.styles.Dim.Render("  ")
	}
	switch mark {
	case GutterAdd:
		return m.styles.GutterAdd.Render("+ ")
	case GutterDelete:
		return m.styles.GutterDelete.Render("- ")
	case GutterChange:
		return m.styles.GutterChange.Render("~ ")
	default:
		return m.styles.Dim.Render("  ")
	}
}

func (m Model) renderStatusBar() string {
	v := m.selected()
	path := "-"
	if v != nil {
		path = v.Path
	}
	status := fmt.Sprintf(" %s | window: %s | u/U undo  r/R redo  1-4 window  q quit",
		path, windowLabels[m.window])
	return m.styles.StatusText.Render(status)
}

// buildLines reconstructs sparse before/after line arrays from a
// Snapshot's Changes, indexed by LineNumber, so SnapshotMarkers can
// diff them without needing the file's full on-disk content.
func buildLines(changes []delta.LineDelta) (before, after []string) {
	maxLine := -1
	for _, c := range changes {
		if c.LineNumber > maxLine {
			maxLine = c.LineNumber
		}
	}
	if maxLine < 0 {
		return nil, nil
	}
	before = make([]string, maxLine+1)
	after = make([]string, maxLine+1)
	for _, c := range changes {
		before[c.LineNumber] = c.Line
		after[c.LineNumber] = c.ChangedLine
	}
	return before, after
}
