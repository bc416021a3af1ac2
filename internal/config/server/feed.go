package server

type FeedServerConfig struct {
	Title       string `mapstructure:"title"       yaml:"title"`
	Link        string `mapstructure:"link"        yaml:"link"`
	Description string `mapstructure:"description" yaml:"description"`
	Author      string `mapstructure:"author"      yaml:"author"`
	Size        int    `mapstructure:"size"        yaml:"size"`

	RedisAddr     string `mapstructure:"redis_addr"     yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"       yaml:"redis_db"`
	CacheTTL      string `mapstructure:"cache_ttl"      yaml:"cache_ttl"`
}
