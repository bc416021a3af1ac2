package server

// BlobServerConfig selects where photo bytes and asset bundles are written.
// Archive submissions always go to the local scratch root.
type BlobServerConfig struct {
	Backend     string       `mapstructure:"backend"      yaml:"backend"`
	LocalRoot   string       `mapstructure:"local_root"   yaml:"local_root"`
	ScratchRoot string       `mapstructure:"scratch_root" yaml:"scratch_root"`
	MediaURL    string       `mapstructure:"media_url"    yaml:"media_url"`
	S3          BlobS3Config `mapstructure:"s3"           yaml:"s3"`
}

type BlobS3Config struct {
	Endpoint         string `mapstructure:"endpoint"           yaml:"endpoint"`
	Region           string `mapstructure:"region"             yaml:"region"`
	Bucket           string `mapstructure:"bucket"             yaml:"bucket"`
	AccessKey        string `mapstructure:"access_key"         yaml:"access_key"`
	SecretKey        string `mapstructure:"secret_key"         yaml:"secret_key"`
	UseSSL           bool   `mapstructure:"use_ssl"            yaml:"use_ssl"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket" yaml:"auto_create_bucket"`
}
