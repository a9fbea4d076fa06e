package framestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"webgif/internal/fileutil"
	"webgif/internal/logging"
	"webgif/internal/session"
)

// WorkDirPrefix names temporary work directories so CleanStale only touches
// directories webgif created.
const WorkDirPrefix = "webgif-"

// framePattern is the glob the encoder reads in GIF mode.
const framePattern = "T*.png"

var numberedFrame = regexp.MustCompile(`^[0-9]+\.png$`)

// Frame is a single captured screenshot.
type Frame struct {
	Seq  int
	At   time.Time
	Path string
}

// Store holds frames for one run.
type Store struct {
	sess      session.Session
	dir       string
	temporary bool
	logger    *slog.Logger

	mu      sync.Mutex
	written []string
}

// New prepares the frame directory for sess. GIF runs get a fresh temporary
// directory under workRoot; PNG runs use the output directory, clearing
// numbered frames left by an earlier run.
func New(sess session.Session, workRoot, runID string, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "framestore")
	s := &Store{sess: sess, logger: logger}

	if sess.Type == session.OutputPNG {
		dir := sess.PNGDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %q: %w", dir, err)
		}
		removed, err := clearNumberedFrames(dir)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			logger.Info("removed frames from previous run",
				logging.String("dir", dir),
				logging.Int("count", removed),
			)
		}
		s.dir = dir
		return s, nil
	}

	if err := os.MkdirAll(workRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create work root %q: %w", workRoot, err)
	}
	dir, err := os.MkdirTemp(workRoot, WorkDirPrefix+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("allocate work directory: %w", err)
	}
	s.dir = dir
	s.temporary = true
	logger.Debug("allocated work directory", logging.String("dir", dir))
	return s, nil
}

// Dir is the directory frames are written to.
func (s *Store) Dir() string { return s.dir }

// Temporary reports whether Dir is a work directory rather than user output.
func (s *Store) Temporary() bool { return s.temporary }

// Reserve returns the frame slot for the 1-based seq captured at at.
func (s *Store) Reserve(seq int, at time.Time) Frame {
	frame := Frame{Seq: seq, At: at}
	if s.temporary {
		frame.Path = filepath.Join(s.dir, fmt.Sprintf("T%020d-%06d.png", at.UnixNano(), seq))
	} else {
		frame.Path = s.sess.FramePath(seq)
	}
	return frame
}

// SnapshotPath is where the PNG-mode snapshot is written.
func (s *Store) SnapshotPath() string { return s.sess.SnapshotPath() }

// Write stores data at path atomically and records it for Discard. Safe for
// concurrent use.
func (s *Store) Write(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return err
	}
	s.mu.Lock()
	s.written = append(s.written, path)
	s.mu.Unlock()
	return nil
}

// Written returns the number of files stored so far.
func (s *Store) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

// Frames lists GIF-mode frame files in encode order.
func (s *Store) Frames() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, framePattern))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Discard removes every file this run wrote. Used when capture fails so no
// partial output survives in the user's output directory.
func (s *Store) Discard() error {
	s.mu.Lock()
	written := append([]string(nil), s.written...)
	s.written = nil
	s.mu.Unlock()

	var firstErr error
	for _, path := range written {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("discard %s: %w", path, err)
		}
	}
	if len(written) > 0 {
		s.logger.Info("discarded partial output", logging.Int("files", len(written)))
	}
	return firstErr
}

// Cleanup removes the temporary work directory. It is a no-op in PNG mode.
func (s *Store) Cleanup() error {
	if !s.temporary {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove work directory %q: %w", s.dir, err)
	}
	s.logger.Debug("removed work directory", logging.String("dir", s.dir))
	return nil
}

func clearNumberedFrames(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read output directory %q: %w", dir, err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !numberedFrame.MatchString(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove stale frame %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
