package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagAddr     = flag.String("addr", "", "HTTP listen address")
	flagData     = flag.String("data", "", "Elevation raster path")
	flagFormat   = flag.String("format", "", "Tile payload format (glb or b3dm)")
	flagMaxLevel = flag.Int("max-level", -1, "Deepest quadtree level")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAddr != "" {
		cfg.Server.Address = *flagAddr
	}
	if *flagData != "" {
		cfg.Dataset.Path = *flagData
	}
	if *flagFormat != "" {
		cfg.Mesh.Format = *flagFormat
	}
	if *flagMaxLevel >= 0 {
		cfg.Mesh.MaxLevel = *flagMaxLevel
	}
}
