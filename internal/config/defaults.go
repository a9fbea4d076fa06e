package config

const (
	defaultURL                = "https://giphy.com/search/lol"
	defaultFrameCount         = 150
	defaultFrameDelayMS       = 150
	defaultSettleDelayMS      = 1000
	defaultQuality            = 25
	defaultViewport           = 480
	defaultOutput             = "./web.gif"
	defaultOutputType         = OutputGIF
	defaultLogDir             = "~/.local/share/webgif/logs"
	defaultHistoryDB          = "~/.local/share/webgif/history.db"
	defaultWorkRetentionHours = 24
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Output types accepted by capture.type and --type.
const (
	OutputGIF = "gif"
	OutputPNG = "png"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:            defaultWorkDir(),
			LogDir:             defaultLogDir,
			HistoryDB:          defaultHistoryDB,
			WorkRetentionHours: defaultWorkRetentionHours,
		},
		Capture: Capture{
			URL:           defaultURL,
			FrameCount:    defaultFrameCount,
			FrameDelayMS:  defaultFrameDelayMS,
			SettleDelayMS: defaultSettleDelayMS,
			Quality:       defaultQuality,
			Viewport:      defaultViewport,
			Output:        defaultOutput,
			Type:          defaultOutputType,
		},
		Browser: Browser{
			Headless:       true,
			OmitBackground: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
