package server

// AssetsServerConfig drives `wind assets build`.
type AssetsServerConfig struct {
	BaseHTML     string            `mapstructure:"base_html"     yaml:"base_html"`
	TemplateDirs []string          `mapstructure:"template_dirs" yaml:"template_dirs"`
	StaticDirs   []string          `mapstructure:"static_dirs"   yaml:"static_dirs"`
	Gzip         bool              `mapstructure:"gzip"          yaml:"gzip"`
	ACL          string            `mapstructure:"acl"           yaml:"acl"`
	Headers      map[string]string `mapstructure:"headers"       yaml:"headers"`
}
