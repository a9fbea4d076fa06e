package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"webgif/internal/browser"
	"webgif/internal/config"
	"webgif/internal/deps"
	"webgif/internal/history"
	"webgif/internal/logging"
	"webgif/internal/pipeline"
	"webgif/internal/session"
)

type captureFlags struct {
	url         string
	duration    int
	delay       int
	frames      int
	quality     int
	output      string
	kind        string
	keepFrames  bool
	settleAfter bool
	browser     string
}

func bindCaptureFlags(cmd *cobra.Command, f *captureFlags) {
	defaults := config.Default().Capture
	flags := cmd.Flags()
	flags.StringVarP(&f.url, "url", "u", defaults.URL, "URL to capture")
	flags.IntVarP(&f.duration, "duration", "d", defaults.FrameCount, "Number of frames to capture")
	flags.IntVarP(&f.delay, "delay", "l", defaults.SettleDelayMS, "Milliseconds to let the page settle before capturing")
	flags.IntVarP(&f.frames, "frames", "f", defaults.FrameDelayMS, "Milliseconds between frames")
	flags.IntVarP(&f.quality, "quality", "q", defaults.Quality, "GIF palette quality, 1 (best) to 30 (fastest)")
	flags.StringVarP(&f.output, "output", "o", defaults.Output, "Output path stem; a trailing extension matching --type is dropped, then .gif or .png is appended")
	flags.StringVarP(&f.kind, "type", "t", defaults.Type, "Output type: gif or png")
	flags.BoolVar(&f.keepFrames, "keep-frames", false, "Keep the temporary PNG frames of a GIF run")
	flags.BoolVar(&f.settleAfter, "settle-after-capture", false, "Wait the settle delay after capturing instead of before")
	flags.StringVar(&f.browser, "browser", "", "Chrome/Chromium executable")
}

// apply copies explicitly set flags over the loaded configuration so config
// file values survive when a flag is left at its default.
func (f *captureFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Capture.URL = f.url
	}
	if flags.Changed("duration") {
		cfg.Capture.FrameCount = f.duration
	}
	if flags.Changed("delay") {
		cfg.Capture.SettleDelayMS = f.delay
	}
	if flags.Changed("frames") {
		cfg.Capture.FrameDelayMS = f.frames
	}
	if flags.Changed("quality") {
		cfg.Capture.Quality = f.quality
	}
	if flags.Changed("output") {
		cfg.Capture.Output = f.output
	}
	if flags.Changed("type") {
		cfg.Capture.Type = strings.ToLower(strings.TrimSpace(f.kind))
	}
	if flags.Changed("keep-frames") {
		cfg.Capture.KeepFrames = f.keepFrames
	}
	if flags.Changed("settle-after-capture") {
		cfg.Capture.SettleAfterCapture = f.settleAfter
	}
	if flags.Changed("browser") {
		cfg.Browser.ExecPath = strings.TrimSpace(f.browser)
	}
}

func runCapture(cmd *cobra.Command, ctx *commandContext, flags *captureFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	flags.apply(cmd, cfg)

	sess, err := session.New(cfg.Capture)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	var recorder pipeline.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.Paths.HistoryDB)
		if err != nil {
			logger.Warn("history disabled for this run", logging.Error(err))
		} else {
			defer store.Close()
			recorder = store
		}
	}

	execPath := cfg.Browser.ExecPath
	if execPath == "" {
		if resolved, ok := deps.ResolveBrowserPath(""); ok {
			execPath = resolved
		}
	}

	progress := newProgressReporter(cmd.ErrOrStderr(), sess.FrameCount, isTerminal(cmd.ErrOrStderr()))
	result, err := pipeline.Run(cmd.Context(), sess, pipeline.Deps{
		Launch: ctx.launch,
		BrowserOptions: browser.Options{
			ExecPath:       execPath,
			Headless:       cfg.Browser.Headless,
			UserAgent:      cfg.Browser.UserAgent,
			OmitBackground: cfg.Browser.OmitBackground,
		},
		WorkRoot: cfg.Paths.WorkDir,
		Logger:   logger,
		History:  recorder,
		OnFrame:  progress.Frame,
	})
	progress.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderCaptureSummary(result))
	return nil
}

func renderCaptureSummary(res *pipeline.Result) string {
	pairs := [][2]string{
		{"Run", res.RunID},
		{"Type", string(res.Type)},
		{"Artifact", res.Artifact},
	}
	if res.Snapshot != "" {
		pairs = append(pairs, [2]string{"Snapshot", res.Snapshot})
	}
	pairs = append(pairs,
		[2]string{"Frames", strconv.Itoa(res.Frames)},
		[2]string{"Size", humanize.Bytes(uint64(max(res.Bytes, 0)))},
		[2]string{"Elapsed", res.Elapsed.Round(10 * time.Millisecond).String()},
	)
	if res.WorkDir != "" {
		pairs = append(pairs, [2]string{"Frames kept in", res.WorkDir})
	}
	return renderKeyValue("Capture complete", pairs)
}
