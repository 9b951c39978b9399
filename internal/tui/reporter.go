package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"toolshelf/internal/verify"
)

// VerifyReporter adapts bubbletea message sending to the verify.ProgressReporter
// interface. It uses caller-supplied functions to extract row keys and fields so
// the tui package doesn't need to know about specific column layouts.
type VerifyReporter struct {
	send           func(tea.Msg)
	startFields    func(path string) map[string]string
	completeFields func(verify.Report) map[string]string
}

// NewVerifyReporter constructs a reporter with the given mapping functions.
// Rows are keyed by manifest path on both sides of the unit lifecycle.
func NewVerifyReporter(
	send func(tea.Msg),
	startFields func(path string) map[string]string,
	completeFields func(verify.Report) map[string]string,
) *VerifyReporter {
	return &VerifyReporter{
		send:           send,
		startFields:    startFields,
		completeFields: completeFields,
	}
}

// Start implements verify.ProgressReporter.
func (r *VerifyReporter) Start(path string) {
	r.send(RowUpdateMsg{
		Key:    path,
		Fields: r.startFields(path),
	})
}

// Complete implements verify.ProgressReporter.
func (r *VerifyReporter) Complete(rep verify.Report) {
	r.send(RowUpdateMsg{
		Key:    rep.Path,
		Fields: r.completeFields(rep),
	})
}
