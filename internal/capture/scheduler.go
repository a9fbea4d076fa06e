package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"webgif/internal/failure"
	"webgif/internal/framestore"
	"webgif/internal/logging"
	"webgif/internal/session"
)

// Page is the screenshot source the scheduler needs.
type Page interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Scheduler captures Session.FrameCount frames from a page.
type Scheduler struct {
	Session session.Session
	Logger  *slog.Logger

	// Delay and Now default to Delay and time.Now.
	Delay func(ctx context.Context, d time.Duration) error
	Now   func() time.Time

	// OnFrame is called after each frame is stored with the number of stored
	// frames and the total expected.
	OnFrame func(done, total int)
}

// Run performs the capture loop and returns the frames in sequence order.
// The first capture failure cancels outstanding captures and is returned
// once every task has finished.
func (s *Scheduler) Run(ctx context.Context, page Page, store *framestore.Store) ([]framestore.Frame, error) {
	if page == nil || store == nil {
		return nil, failure.Wrap(failure.ErrCapture, "capture", "run", "page and store are required", nil)
	}
	sess := s.Session
	logger := logging.NewComponentLogger(s.Logger, "capture")
	delay := s.Delay
	if delay == nil {
		delay = Delay
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	group, gctx := errgroup.WithContext(ctx)

	// Requests queue up in loop order and a single shooter sends them to the
	// page one at a time, so the n-th reserved path always holds the n-th
	// screenshot. The loop does not wait on the shooter; with MaxInFlight
	// set it blocks once that many requests are pending.
	pending := sess.FrameCount + 1
	if sess.MaxInFlight > 0 {
		pending = sess.MaxInFlight
	}
	queue := make(chan shot, pending)

	var stored atomic.Int64
	group.Go(func() error {
		for job := range queue {
			data, err := page.Screenshot(gctx)
			if err != nil {
				return failure.Wrap(failure.ErrCapture, "capture", job.op, job.label, err)
			}
			group.Go(func() error {
				if err := store.Write(job.path, data); err != nil {
					return failure.Wrap(failure.ErrCapture, "capture", job.op, job.label, err)
				}
				if job.frame {
					done := int(stored.Add(1))
					if s.OnFrame != nil {
						s.OnFrame(done, sess.FrameCount)
					}
				}
				return nil
			})
		}
		return nil
	})

	enqueue := func(job shot) error {
		select {
		case queue <- job:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	}

	frames := make([]framestore.Frame, 0, sess.FrameCount)
	snapshotAt := sess.SnapshotIteration()

	logger.Info("capturing frames",
		logging.Int("frames", sess.FrameCount),
		logging.Duration("frame_delay", sess.FrameDelay),
		logging.String("type", string(sess.Type)),
	)

	var loopErr error
	for i := 1; i <= sess.FrameCount; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		frame := store.Reserve(i, now())
		if loopErr = enqueue(shot{path: frame.Path, op: "screenshot", label: fmt.Sprintf("frame %d", frame.Seq), frame: true}); loopErr != nil {
			break
		}
		frames = append(frames, frame)
		if sess.Type == session.OutputPNG && i == snapshotAt {
			if loopErr = enqueue(shot{path: store.SnapshotPath(), op: "snapshot"}); loopErr != nil {
				break
			}
		}
		if err := delay(gctx, sess.FrameDelay); err != nil {
			loopErr = err
			break
		}
	}
	close(queue)

	if loopErr == nil && sess.SettleAfterCapture {
		loopErr = delay(gctx, sess.SettleDelay)
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	// The group context only ends early on a task error, which Wait reports;
	// anything left is the caller's cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return nil, loopErr
	}

	logger.Info("frames captured", logging.Int("frames", len(frames)))
	return frames, nil
}

// shot is one queued screenshot request.
type shot struct {
	path  string
	op    string
	label string
	frame bool
}
