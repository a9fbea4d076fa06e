package pipeline

// State is a step of a run. Runs move forward only:
// Init, BrowserLaunched, PageNavigated, Capturing, then Encoding or
// Skipped, then Closed.
type State string

const (
	StateInit            State = "init"
	StateBrowserLaunched State = "browser_launched"
	StatePageNavigated   State = "page_navigated"
	StateCapturing       State = "capturing"
	StateEncoding        State = "encoding"
	StateSkipped         State = "skipped"
	StateClosed          State = "closed"
)
