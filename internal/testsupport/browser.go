package testsupport

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"webgif/internal/browser"
	"webgif/internal/pipeline"
)

// ErrPageClosed is returned by a FakePage after it has been closed.
var ErrPageClosed = errors.New("fake page closed")

// FakeBrowser implements pipeline.Browser without a real browser. Each
// screenshot is a solid PNG in ShotColor(n) for the n-th call.
type FakeBrowser struct {
	// LaunchErr, NewPageErr and NavigateErr fail the matching step.
	LaunchErr   error
	NewPageErr  error
	NavigateErr error
	// CloseAfter closes the page once this many screenshots succeeded, so
	// later calls fail the way a closed tab does. Zero disables it.
	CloseAfter int

	mu       sync.Mutex
	launched int
	closed   bool
	pages    []*FakePage
}

// Launcher returns a pipeline.Launcher that hands out b.
func (b *FakeBrowser) Launcher() pipeline.Launcher {
	return func(ctx context.Context, _ browser.Options, _ *slog.Logger) (pipeline.Browser, error) {
		if b.LaunchErr != nil {
			return nil, b.LaunchErr
		}
		b.mu.Lock()
		b.launched++
		b.mu.Unlock()
		return b, nil
	}
}

// NewPage opens a fake page of the requested size.
func (b *FakeBrowser) NewPage(_ context.Context, width, height int) (pipeline.Page, error) {
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	page := &FakePage{Width: width, Height: height, navigateErr: b.NavigateErr, closeAfter: b.CloseAfter}
	b.mu.Lock()
	b.pages = append(b.pages, page)
	b.mu.Unlock()
	return page, nil
}

// Close marks the browser closed.
func (b *FakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Launches returns how many times the launcher was used.
func (b *FakeBrowser) Launches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launched
}

// Closed reports whether Close was called.
func (b *FakeBrowser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Pages returns the pages opened so far.
func (b *FakeBrowser) Pages() []*FakePage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*FakePage(nil), b.pages...)
}

// FakePage is a pipeline.Page backed by generated PNGs.
type FakePage struct {
	Width, Height int

	navigateErr error
	closeAfter  int

	mu          sync.Mutex
	url         string
	shots       int
	inFlight    int
	maxInFlight int
	closed      bool
	closeHits   int
}

// NewFakePage returns a standalone page of size x size.
func NewFakePage(size int) *FakePage {
	return &FakePage{Width: size, Height: size}
}

// Navigate records url.
func (p *FakePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.navigateErr != nil {
		return p.navigateErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPageClosed
	}
	p.url = url
	return nil
}

// Screenshot returns a solid PNG for the next call index.
func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPageClosed
	}
	n := p.shots
	p.shots++
	if p.closeAfter > 0 && p.shots >= p.closeAfter {
		p.closed = true
	}
	p.inFlight++
	p.maxInFlight = max(p.maxInFlight, p.inFlight)
	p.mu.Unlock()

	data, err := EncodeSolidPNG(p.Width, ShotColor(n))

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
	return data, err
}

// MaxConcurrentShots returns the most Screenshot calls that overlapped.
func (p *FakePage) MaxConcurrentShots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxInFlight
}

// Close marks the page closed.
func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeHits++
	return nil
}

// URL returns the last navigated URL.
func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Shots returns the number of screenshots taken.
func (p *FakePage) Shots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shots
}

// CloseCalls returns how many times Close was called.
func (p *FakePage) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeHits
}
