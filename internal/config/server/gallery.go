package server

// GalleryServerConfig controls archive ingestion. MaxPixels caps width*height
// of a member before its pixel data is decoded.
type GalleryServerConfig struct {
	MaxTitleLength   int      `mapstructure:"max_title_length"  yaml:"max_title_length"`
	MaxPixels        int64    `mapstructure:"max_pixels"        yaml:"max_pixels"`
	ReservedPrefixes []string `mapstructure:"reserved_prefixes" yaml:"reserved_prefixes"`
	PhotoPrefix      string   `mapstructure:"photo_prefix"      yaml:"photo_prefix"`
	ArchivePrefix    string   `mapstructure:"archive_prefix"    yaml:"archive_prefix"`
	FailFast         bool     `mapstructure:"fail_fast"         yaml:"fail_fast"`
}
