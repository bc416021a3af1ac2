package server

import "time"

// MetadataServerConfig selects the metadata store holding posts, galleries and photos.
type MetadataServerConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	SQLite MetadataSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// Wait this long on a locked database before failing a write.
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
	// Log every SQL statement at info level.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}
