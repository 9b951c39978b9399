package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode selects how a batch command reports progress.
type OutputMode int

const (
	// ModeTUI renders the live bubbletea table.
	ModeTUI OutputMode = iota
	// ModePlain prints a static table once the batch finishes.
	ModePlain
	// ModeJSON emits a machine-readable document and nothing else.
	ModeJSON
)

// DetectMode picks the output mode for out. JSON and --no-progress win
// outright; otherwise the TUI runs only when out is a terminal that can
// plausibly render it.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress {
		return ModePlain
	}
	if !isTerminal(out) {
		return ModePlain
	}
	// TERM is meaningless on Windows consoles, skip the check there.
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
