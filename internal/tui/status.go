package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const statusInterval = 100 * time.Millisecond

// StatusWriter animates a single status line on a writer, for the setup
// phases that run before the progress table takes over. Each Update
// replaces the message and restarts the elapsed counter.
type StatusWriter struct {
	w    io.Writer
	done chan struct{}

	mu      sync.Mutex
	message string
	since   time.Time
	stopped bool
}

// NewStatusWriter starts the background spinner on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:     w,
		since: time.Now(),
		done:  make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update replaces the message next to the spinner and zeroes the
// elapsed time for the new phase.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.since = time.Now()
	sw.mu.Unlock()
}

// Stop ends the spinner and erases the status line. Safe to call more
// than once.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.done)
	fmt.Fprintf(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			fmt.Fprintf(sw.w, "\r\033[K%s %s", spinnerFrames[frame%len(spinnerFrames)], sw.line())
		}
	}
}

func (sw *StatusWriter) line() string {
	sw.mu.Lock()
	msg := sw.message
	elapsed := time.Since(sw.since)
	sw.mu.Unlock()
	return fmt.Sprintf("%s (%s)", msg, formatElapsed(elapsed))
}

// formatElapsed keeps the elapsed display short at every scale, from
// milliseconds up to minutes.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
