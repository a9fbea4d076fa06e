package session

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"webgif/internal/config"
	"webgif/internal/failure"
)

// OutputType selects the artifact produced by a run.
type OutputType string

const (
	OutputGIF OutputType = config.OutputGIF
	OutputPNG OutputType = config.OutputPNG
)

// Session holds the parameters of one capture run. It is passed by value and
// never mutated after New returns.
type Session struct {
	URL         string
	Viewport    int
	FrameCount  int
	FrameDelay  time.Duration
	SettleDelay time.Duration
	Quality     int
	Type        OutputType
	// OutputStem is the absolute output path without a .gif/.png extension.
	OutputStem string

	KeepFrames         bool
	SettleAfterCapture bool
	MaxInFlight        int
}

// New validates capture settings and builds a Session.
func New(c config.Capture) (Session, error) {
	if err := c.Validate(); err != nil {
		return Session{}, failure.Wrap(failure.ErrConfiguration, "session", "validate", "", err)
	}
	target, err := normalizeURL(c.URL)
	if err != nil {
		return Session{}, failure.Wrap(failure.ErrConfiguration, "session", "url", "", err)
	}
	stem, err := outputStem(c.Output, c.Type)
	if err != nil {
		return Session{}, failure.Wrap(failure.ErrConfiguration, "session", "output", "", err)
	}
	return Session{
		URL:                target,
		Viewport:           c.Viewport,
		FrameCount:         c.FrameCount,
		FrameDelay:         time.Duration(c.FrameDelayMS) * time.Millisecond,
		SettleDelay:        time.Duration(c.SettleDelayMS) * time.Millisecond,
		Quality:            c.Quality,
		Type:               OutputType(c.Type),
		OutputStem:         stem,
		KeepFrames:         c.KeepFrames,
		SettleAfterCapture: c.SettleAfterCapture,
		MaxInFlight:        c.MaxInFlight,
	}, nil
}

// GIFPath is the final animated GIF location.
func (s Session) GIFPath() string { return s.OutputStem + ".gif" }

// PNGDir is the directory holding numbered frames in PNG mode.
func (s Session) PNGDir() string { return s.OutputStem }

// SnapshotPath is the extra full snapshot written next to PNGDir.
func (s Session) SnapshotPath() string { return s.OutputStem + ".png" }

// FramePath returns the numbered PNG frame path for 1-based seq.
func (s Session) FramePath(seq int) string {
	return filepath.Join(s.PNGDir(), strconv.Itoa(seq)+".png")
}

// SnapshotIteration is the 1-based iteration that also captures the
// snapshot in PNG mode: the second-to-last frame, or the only frame when
// FrameCount is 1.
func (s Session) SnapshotIteration() int {
	return max(s.FrameCount-1, 1)
}

// Artifact returns the primary output path for the session type.
func (s Session) Artifact() string {
	if s.Type == OutputPNG {
		return s.PNGDir()
	}
	return s.GIFPath()
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "about:") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return "", fmt.Errorf("url %q has no host", raw)
		}
	case "file", "about", "data":
	default:
		return "", fmt.Errorf("url %q: unsupported scheme %q", raw, parsed.Scheme)
	}
	return parsed.String(), nil
}

// outputStem expands output and drops an extension that matches the output
// type, so "web.gif" in gif mode still writes web.gif. Any other extension
// is part of the stem.
func outputStem(output, kind string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(output))
	if err != nil {
		return "", err
	}
	if ext := filepath.Ext(expanded); strings.EqualFold(ext, "."+kind) {
		expanded = strings.TrimSuffix(expanded, ext)
	}
	if filepath.Base(expanded) == "" || expanded == filepath.Dir(expanded) {
		return "", fmt.Errorf("output %q does not name a file", output)
	}
	return expanded, nil
}
