package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"webgif/internal/browser"
	"webgif/internal/capture"
	"webgif/internal/encoding"
	"webgif/internal/failure"
	"webgif/internal/framestore"
	"webgif/internal/history"
	"webgif/internal/logging"
	"webgif/internal/session"
)

// Recorder persists run outcomes. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
}

// Deps are the collaborators of a run. Launch and WorkRoot are required.
type Deps struct {
	Launch         Launcher
	BrowserOptions browser.Options
	WorkRoot       string
	Logger         *slog.Logger
	History        Recorder
	OnFrame        func(done, total int)

	// Overridable for tests.
	Now      func() time.Time
	Delay    func(ctx context.Context, d time.Duration) error
	NewRunID func() string
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Type     session.OutputType
	Artifact string
	// Snapshot is the extra PNG written in PNG mode.
	Snapshot string
	Frames   int
	Bytes    int64
	// WorkDir is set when GIF frames were kept on disk.
	WorkDir string
	Elapsed time.Duration
}

type runner struct {
	sess   session.Session
	deps   Deps
	runID  string
	logger *slog.Logger
	// base carries run context fields without a component, for collaborators.
	base  *slog.Logger
	state State
}

// Run executes one capture session.
func Run(ctx context.Context, sess session.Session, deps Deps) (*Result, error) {
	if deps.Launch == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "pipeline", "run", "browser launcher is required", nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Delay == nil {
		deps.Delay = capture.Delay
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}

	r := &runner{sess: sess, deps: deps, runID: deps.NewRunID()}
	ctx = logging.WithRunID(ctx, r.runID)
	r.base = logging.WithContext(ctx, deps.Logger)
	r.logger = logging.NewComponentLogger(r.base, "pipeline")

	started := deps.Now()
	r.begin(ctx, started)

	result, err := r.run(ctx)
	if result != nil {
		result.Elapsed = deps.Now().Sub(started)
	}
	r.finish(ctx, result, err)
	if err != nil {
		r.logger.Error("capture failed",
			logging.String(logging.FieldErrorKind, failure.Kind(err)),
			logging.String(logging.FieldStage, string(r.state)),
			logging.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (r *runner) run(ctx context.Context) (result *Result, err error) {
	sess := r.sess
	r.transition(StateInit)

	lock, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			r.logger.Warn("release output lock failed", logging.Error(unlockErr))
		}
	}()
	defer r.closed()

	b, err := r.deps.Launch(ctx, r.deps.BrowserOptions, r.base)
	if err != nil {
		return nil, failure.Wrap(failure.ErrBrowser, "pipeline", "launch", "", err)
	}
	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			r.logger.Warn("close browser failed", logging.Error(closeErr))
		}
	}()

	page, err := b.NewPage(ctx, sess.Viewport, sess.Viewport)
	if err != nil {
		return nil, failure.Wrap(failure.ErrBrowser, "pipeline", "new page", "", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			r.logger.Debug("close page failed", logging.Error(closeErr))
		}
	}()
	r.transition(StateBrowserLaunched)

	if err := page.Navigate(ctx, sess.URL); err != nil {
		return nil, failure.Wrap(failure.ErrNavigation, "pipeline", "navigate", sess.URL, err)
	}
	r.transition(StatePageNavigated)

	if !sess.SettleAfterCapture {
		if err := r.deps.Delay(ctx, sess.SettleDelay); err != nil {
			return nil, err
		}
	}

	store, err := framestore.New(sess, r.deps.WorkRoot, r.runID, r.base)
	if err != nil {
		return nil, failure.Wrap(failure.ErrCapture, "pipeline", "frame store", "", err)
	}

	r.transition(StateCapturing)
	scheduler := &capture.Scheduler{
		Session: sess,
		Logger:  r.base,
		Delay:   r.deps.Delay,
		Now:     r.deps.Now,
		OnFrame: r.deps.OnFrame,
	}
	frames, err := scheduler.Run(ctx, page, store)
	if err != nil {
		r.abandon(store)
		return nil, err
	}

	result = &Result{RunID: r.runID, Type: sess.Type, Artifact: sess.Artifact()}
	if sess.Type == session.OutputPNG {
		r.transition(StateSkipped)
		result.Frames = len(frames)
		result.Snapshot = store.SnapshotPath()
		result.Bytes = sumSizes(append(framePaths(frames), result.Snapshot))
		return result, nil
	}

	r.transition(StateEncoding)
	paths, err := store.Frames()
	if err != nil {
		r.abandon(store)
		return nil, failure.Wrap(failure.ErrEncode, "pipeline", "list frames", "", err)
	}
	encoder := encoding.New(encoding.Options{
		Size:       sess.Viewport,
		FrameDelay: sess.FrameDelay,
		Quality:    sess.Quality,
	}, r.base)
	count, err := encoder.EncodeFile(ctx, paths, sess.GIFPath())
	if err != nil {
		r.abandon(store)
		return nil, err
	}
	result.Frames = count
	result.Bytes = sumSizes([]string{sess.GIFPath()})

	if sess.KeepFrames {
		result.WorkDir = store.Dir()
		r.logger.Info("keeping frames", logging.String("work_dir", store.Dir()))
	} else if err := store.Cleanup(); err != nil {
		r.logger.Warn("remove work directory failed", logging.Error(err))
	}
	return result, nil
}

// abandon handles partial output after a failure. Frames in the user's
// output directory are removed; a GIF work directory is left in place for
// inspection and later swept by CleanStale.
func (r *runner) abandon(store *framestore.Store) {
	if store.Temporary() {
		r.logger.Info("work directory kept after failure", logging.String("work_dir", store.Dir()))
		return
	}
	if err := store.Discard(); err != nil {
		r.logger.Warn("discard partial frames failed", logging.Error(err))
	}
}

func (r *runner) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(r.deps.WorkRoot, 0o755); err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "pipeline", "work root", r.deps.WorkRoot, err)
	}
	path := LockPath(r.deps.WorkRoot, r.sess.OutputStem)
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrBusy, "pipeline", "lock output", path, err)
	}
	if !locked {
		return nil, failure.Wrap(failure.ErrBusy, "pipeline", "lock output",
			fmt.Sprintf("another run is writing %s", r.sess.Artifact()), nil)
	}
	return lock, nil
}

// LockPath is the lock file guarding outputs under stem.
func LockPath(workRoot, stem string) string {
	sum := sha256.Sum256([]byte(stem))
	return filepath.Join(workRoot, "output-"+hex.EncodeToString(sum[:8])+".lock")
}

func (r *runner) transition(next State) {
	r.state = next
	r.logger.Info("state changed", logging.String(logging.FieldStage, string(next)))
}

// closed logs the final transition without replacing the state a failed run
// stopped in.
func (r *runner) closed() {
	r.logger.Info("state changed",
		logging.String(logging.FieldStage, string(StateClosed)),
		logging.String("from", string(r.state)),
	)
}

func (r *runner) begin(ctx context.Context, started time.Time) {
	if r.deps.History == nil {
		return
	}
	err := r.deps.History.Begin(ctx, history.Run{
		ID:         r.runID,
		URL:        r.sess.URL,
		OutputType: string(r.sess.Type),
		Artifact:   r.sess.Artifact(),
		FrameCount: r.sess.FrameCount,
		StartedAt:  started,
	})
	if err != nil {
		r.logger.Warn("record run start failed", logging.Error(err))
	}
}

func (r *runner) finish(ctx context.Context, result *Result, runErr error) {
	if r.deps.History == nil {
		return
	}
	outcome := history.Outcome{Status: history.StatusSucceeded, FinishedAt: r.deps.Now()}
	if result != nil {
		outcome.FramesCaptured = result.Frames
		outcome.Bytes = result.Bytes
	}
	if runErr != nil {
		outcome.Status = history.StatusFailed
		if errors.Is(runErr, context.Canceled) {
			outcome.Status = history.StatusCanceled
		}
		outcome.ErrorKind = failure.Kind(runErr)
		outcome.ErrorMessage = runErr.Error()
	}
	// The run context may already be canceled; the ledger write must still land.
	if err := r.deps.History.Finish(context.WithoutCancel(ctx), r.runID, outcome); err != nil {
		r.logger.Warn("record run outcome failed", logging.Error(err))
	}
}

func framePaths(frames []framestore.Frame) []string {
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		paths = append(paths, f.Path)
	}
	return paths
}

func sumSizes(paths []string) int64 {
	var total int64
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}
