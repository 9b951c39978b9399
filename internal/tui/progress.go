package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// frameMsg advances the spinner animation.
type frameMsg time.Time

// Column describes one column of the progress table. Width is a floor,
// not a cap on the header: the rendered width is whichever is larger.
type Column struct {
	Header string
	Width  int
}

// Row holds the current field values for one table row.
type Row struct {
	Key    string
	Fields []string
}

// ProgressModel renders a live table of per-manifest progress. Columns
// are supplied by the caller, so the verify command and any future
// batch command share the same model.
type ProgressModel struct {
	columns  []Column
	rows     []Row
	rowIndex map[string]int
	title    string
	done     bool
	err      error

	// statusCol is the index of the STATUS column, or -1 when the
	// table has none. Status cells get color, others do not.
	statusCol int

	frame int
}

// NewProgressModel builds a model for the given title and columns.
func NewProgressModel(title string, columns []Column) ProgressModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, "STATUS") {
			statusCol = i
			break
		}
	}
	return ProgressModel{
		columns:   columns,
		rowIndex:  make(map[string]int),
		title:     title,
		statusCol: statusCol,
	}
}

// AddRow registers a row before the program starts. Later updates are
// delivered as RowUpdateMsg keyed by the same key.
func (m *ProgressModel) AddRow(key string, fields []string) {
	padded := make([]string, len(m.columns))
	copy(padded, fields)
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, Row{Key: key, Fields: padded})
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return nextFrame()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, nextFrame()

	case RowUpdateMsg:
		m.applyRowUpdate(msg)
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ProgressModel) applyRowUpdate(msg RowUpdateMsg) {
	idx, ok := m.rowIndex[msg.Key]
	if !ok {
		return
	}
	row := &m.rows[idx]
	for j, col := range m.columns {
		if val, exists := msg.Fields[col.Header]; exists {
			row.Fields[j] = val
		}
	}
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = len(col.Header)
		if col.Width > widths[i] {
			widths[i] = col.Width
		}
	}

	var b strings.Builder

	headerParts := make([]string, len(m.columns))
	for i, col := range m.columns {
		headerParts[i] = HeaderStyle.Render(padRight(col.Header, widths[i]))
	}
	b.WriteString(strings.Join(headerParts, "  "))
	b.WriteByte('\n')

	for _, row := range m.rows {
		b.WriteString(m.renderRow(row, widths))
		b.WriteByte('\n')
	}

	if !m.done {
		completed, total := m.completedRows()
		spinner := spinnerFrames[m.frame%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Processing %d/%d...\n", spinner, completed, total)
	}

	return b.String()
}

// renderRow formats one row's cells. Values longer than the column
// width are truncated, never allowed to widen the column.
func (m ProgressModel) renderRow(row Row, widths []int) string {
	parts := make([]string, len(m.columns))
	for i := range m.columns {
		val := ""
		if i < len(row.Fields) {
			val = row.Fields[i]
		}
		val = TruncateWithEllipsis(val, widths[i])
		if i == m.statusCol {
			parts[i] = StatusStyle(val).Render(padRight(val, widths[i]))
		} else {
			parts[i] = padRight(val, widths[i])
		}
	}
	return strings.Join(parts, "  ")
}

// completedRows counts rows whose STATUS cell has left "pending".
func (m ProgressModel) completedRows() (int, int) {
	total := len(m.rows)
	if m.statusCol < 0 {
		return 0, total
	}
	completed := 0
	for _, row := range m.rows {
		if m.statusCol < len(row.Fields) {
			status := strings.TrimSpace(row.Fields[m.statusCol])
			if status != "" && status != "pending" {
				completed++
			}
		}
	}
	return completed, total
}

// Done reports whether the model has finished, by completion or error.
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns the fatal error delivered via ErrorMsg, if any.
func (m ProgressModel) Err() error {
	return m.err
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// NonEmptyOrDash substitutes "-" for blank table cells.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis shortens a string to max characters, marking the
// cut with "...". Columns too narrow for the marker get a hard cut.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
