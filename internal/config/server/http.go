package server

type HTTPServerConfig struct {
	Address       string `mapstructure:"address"         yaml:"address"`
	PageSize      int    `mapstructure:"page_size"       yaml:"page_size"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" yaml:"max_upload_size"`
}
