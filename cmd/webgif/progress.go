package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progressReporter shows capture progress on stderr: a bar on a terminal,
// a line of dots otherwise.
type progressReporter struct {
	w     io.Writer
	total int

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	started bool
	done    bool
	shown   int
}

func newProgressReporter(w io.Writer, total int, interactive bool) *progressReporter {
	p := &progressReporter{w: w, total: total}
	if interactive {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Taking screenshots"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	return p
}

// Frame records one stored frame. Safe for concurrent use. Reports from
// concurrent writes can arrive out of order, so the bar only moves forward.
func (p *progressReporter) Frame(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || done <= p.shown {
		return
	}
	step := done - p.shown
	p.shown = done
	if p.bar != nil {
		_ = p.bar.Set(done)
		return
	}
	if !p.started {
		fmt.Fprint(p.w, "Taking screenshots: ")
		p.started = true
	}
	fmt.Fprint(p.w, strings.Repeat(".", step))
}

// Finish ends the progress output.
func (p *progressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	if p.bar != nil {
		_ = p.bar.Finish()
		return
	}
	if p.started {
		fmt.Fprintln(p.w)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
