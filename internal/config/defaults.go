package config

const (
	defaultWorkDir        = "~/.cache/scenecraft/work"
	defaultOutputDir      = "~/scenecraft"
	defaultLogDir         = "~/.local/share/scenecraft/logs"
	defaultHistoryDB      = "~/.local/share/scenecraft/history.db"
	defaultMaxChars       = 0
	defaultTolerance      = 5
	defaultWindowFactor   = 3
	defaultSilenceGapMS   = 300
	defaultCanvasWidth    = 1920
	defaultCanvasHeight   = 1080
	defaultImageX         = 0.5
	defaultImageY         = 0.5
	defaultImageWidth     = 0.8
	defaultImageHeight    = 0.8
	defaultProbeBinary    = "ffprobe"
	defaultProbeWorkers   = 4
	defaultProbeWidth     = 1920
	defaultProbeHeight    = 1080
	defaultProbeFPS       = 30
	defaultProbeDuration  = 10
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
	defaultHistoryEnabled = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Alignment: Alignment{
			MaxChars:     defaultMaxChars,
			Tolerance:    defaultTolerance,
			WindowFactor: defaultWindowFactor,
			SilenceGapMS: defaultSilenceGapMS,
		},
		Canvas: Canvas{
			Width:  defaultCanvasWidth,
			Height: defaultCanvasHeight,
		},
		Assets: Assets{
			ImageX:      defaultImageX,
			ImageY:      defaultImageY,
			ImageWidth:  defaultImageWidth,
			ImageHeight: defaultImageHeight,
		},
		Probe: Probe{
			FFprobeBinary:   defaultProbeBinary,
			Concurrency:     defaultProbeWorkers,
			DefaultWidth:    defaultProbeWidth,
			DefaultHeight:   defaultProbeHeight,
			DefaultFPS:      defaultProbeFPS,
			DefaultDuration: defaultProbeDuration,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}
