// Package config handles service configuration loading and management.
package config

import "time"

// Config holds all tile service settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Texture TextureConfig `yaml:"texture"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP serving settings.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	CacheMB         int64         `yaml:"cache_mb"` // encoded tile cache budget
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ExtentConfig is a planar bounding rectangle in projection units.
type ExtentConfig struct {
	West  float64 `yaml:"west"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	North float64 `yaml:"north"`
}

// IsZero reports whether the extent was left unset.
func (e ExtentConfig) IsZero() bool {
	return e.West == 0 && e.South == 0 && e.East == 0 && e.North == 0
}

// DatasetConfig describes the elevation raster to serve.
type DatasetConfig struct {
	Path       string       `yaml:"path"`
	Encoding   string       `yaml:"encoding"` // height or terrarium
	Projection string       `yaml:"projection"`
	Extent     ExtentConfig `yaml:"extent"`
	NoData     float64      `yaml:"no_data"`  // raw sample value marking missing cells
	Scale      float64      `yaml:"scale"`    // meters per raw unit
	Offset     float64      `yaml:"offset"`   // meters added after scaling
	CacheMB    int64        `yaml:"cache_mb"` // resampled grid cache budget
}

// MeshConfig holds triangulation and tile payload settings.
type MeshConfig struct {
	TileSize       int     `yaml:"tile_size"` // cells per tile edge, power of two
	MaxLevel       int     `yaml:"max_level"`
	Format         string  `yaml:"format"`     // glb or b3dm
	Policy         string  `yaml:"policy"`     // resolution or elevation
	ErrorBase      float64 `yaml:"error_base"` // 0 derives from dataset resolution
	ErrorFraction  float64 `yaml:"error_fraction"`
	ErrorMin       float64 `yaml:"error_min"`
	NeighborRadius int     `yaml:"neighbor_radius"`
}

// TextureConfig describes the optional imagery draped over tiles.
type TextureConfig struct {
	Path    string       `yaml:"path"`   // empty serves untextured tiles
	Extent  ExtentConfig `yaml:"extent"` // unset reuses the dataset extent
	Size    int          `yaml:"size"`
	Format  string       `yaml:"format"` // jpeg or png
	Quality int          `yaml:"quality"`
}

// PreviewConfig holds shaded preview rendering settings.
type PreviewConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Size        int    `yaml:"size"`
	Supersample int    `yaml:"supersample"`
	Background  string `yaml:"background"`
	Surface     string `yaml:"surface"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			CacheMB:         128,
			ShutdownTimeout: 10 * time.Second,
		},
		Dataset: DatasetConfig{
			Encoding:   "height",
			Projection: "EPSG:3857",
			NoData:     -32768,
			Scale:      1,
			Offset:     0,
			CacheMB:    512,
		},
		Mesh: MeshConfig{
			TileSize:       256,
			MaxLevel:       4,
			Format:         "glb",
			Policy:         "resolution",
			ErrorBase:      0,
			ErrorFraction:  0.25,
			ErrorMin:       1,
			NeighborRadius: 2,
		},
		Texture: TextureConfig{
			Size:    512,
			Format:  "jpeg",
			Quality: 85,
		},
		Preview: PreviewConfig{
			Enabled:     true,
			Size:        512,
			Supersample: 4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
