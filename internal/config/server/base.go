package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Blob     BlobServerConfig     `mapstructure:"blob"     yaml:"blob"`
	HTTP     HTTPServerConfig     `mapstructure:"http"     yaml:"http"`
	Gallery  GalleryServerConfig  `mapstructure:"gallery"  yaml:"gallery"`
	Feed     FeedServerConfig     `mapstructure:"feed"     yaml:"feed"`
	Assets   AssetsServerConfig   `mapstructure:"assets"   yaml:"assets"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
