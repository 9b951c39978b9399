package tui

// RowUpdateMsg carries new cell values for one row, keyed by column
// header. Columns absent from Fields keep their current value.
type RowUpdateMsg struct {
	Key    string
	Fields map[string]string
}

// WorkDoneMsg tells the model the batch finished.
type WorkDoneMsg struct{}

// ErrorMsg aborts the display with a fatal error.
type ErrorMsg struct {
	Err error
}
