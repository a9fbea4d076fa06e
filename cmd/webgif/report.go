package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

type checkState int

const (
	checkPass checkState = iota
	checkWarn
	checkFail
	checkSkip
)

func (s checkState) label() string {
	switch s {
	case checkPass:
		return "PASS"
	case checkWarn:
		return "WARN"
	case checkFail:
		return "FAIL"
	default:
		return "SKIP"
	}
}

func (s checkState) colors() text.Colors {
	switch s {
	case checkPass:
		return text.Colors{text.FgGreen}
	case checkWarn:
		return text.Colors{text.FgYellow}
	case checkFail:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

const checkNameWidth = 20

// report prints doctor output, colored only when writing to a terminal.
type report struct {
	w     io.Writer
	color bool
}

func newReport(w io.Writer) *report {
	return &report{w: w, color: isTerminal(w)}
}

func (r *report) section(title string) {
	title = strings.TrimSpace(title)
	if r.color {
		title = text.Colors{text.Bold, text.Underline}.Sprint(title)
	}
	fmt.Fprintln(r.w, title)
}

func (r *report) check(name string, state checkState, detail string) {
	fmt.Fprintln(r.w, formatCheck(name, state, detail, r.color))
}

func (r *report) blank() {
	fmt.Fprintln(r.w)
}

func formatCheck(name string, state checkState, detail string, color bool) string {
	label := fmt.Sprintf("%-4s", state.label())
	if color {
		label = state.colors().Sprint(label)
	}
	line := fmt.Sprintf("  %s  %-*s", label, checkNameWidth, name)
	if detail != "" {
		line += " " + detail
	}
	return strings.TrimRight(line, " ")
}
