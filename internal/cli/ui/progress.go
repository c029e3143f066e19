package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// ProgressBar draws a determinate bar on a single terminal line. Updates
// may come from several goroutines.
type ProgressBar struct {
	w       io.Writer
	width   int
	noColor bool

	mu      sync.Mutex
	current int
	total   int
	label   string
}

// ProgressBarOptions configures a ProgressBar
type ProgressBarOptions struct {
	Width   int // Default: 40
	NoColor bool
}

func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width <= 0 {
		width = 40
	}
	return &ProgressBar{w: w, width: width, noColor: opts.NoColor}
}

// Update moves the bar to current of total and shows label after it.
// current is clamped to total.
func (p *ProgressBar) Update(current, total int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = min(current, total)
	p.label = label
	p.draw()
}

// Callback adapts the bar to workspace.Options.ProgressFunc
func (p *ProgressBar) Callback() func(current, total int, path string) {
	return func(current, total int, path string) {
		p.Update(current, total, filepath.Base(path))
	}
}

// Finish fills the bar and ends the line
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.total
	p.draw()
	fmt.Fprintln(p.w)
}

// draw writes the bar; callers hold mu
func (p *ProgressBar) draw() {
	if p.total == 0 {
		return
	}
	filled := p.width * p.current / p.total

	colors := newPalette(p.noColor)
	done := colors.key.Sprint(strings.Repeat("█", filled))
	rest := colors.muted.Sprint(strings.Repeat("░", p.width-filled))

	label := ""
	if p.label != "" {
		label = " " + p.label
	}
	// \033[K clears what a longer previous label left behind
	fmt.Fprintf(p.w, "\r[%s%s] %3d%% %d/%d%s\033[K", done, rest, 100*p.current/p.total, p.current, p.total, label)
}
