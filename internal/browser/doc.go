// Package browser drives a headless Chrome through chromedp.
//
// It exposes the narrow surface the capture pipeline needs: launch a
// browser with the fixed safety flags, open a page sized to the capture
// viewport, navigate, take PNG screenshots and close. Every method takes the
// caller's context so cancellation propagates into the DevTools calls.
package browser
