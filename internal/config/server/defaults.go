package server

import (
	"time"

	"github.com/spf13/viper"
)

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path:        "./data/wind.db",
				BusyTimeout: 5 * time.Second,
			},
		},

		Blob: BlobServerConfig{
			Backend:     "local",
			LocalRoot:   "./media",
			ScratchRoot: "./data/scratch",
			MediaURL:    "/media/",
			S3: BlobS3Config{
				Endpoint:         "localhost:9000",
				Region:           "us-east-1",
				Bucket:           "wind",
				UseSSL:           false,
				AutoCreateBucket: true,
			},
		},

		HTTP: HTTPServerConfig{
			Address:       ":8080",
			PageSize:      5,
			MaxUploadSize: 256 << 20,
		},

		Gallery: GalleryServerConfig{
			MaxTitleLength:   120,
			MaxPixels:        50_000_000,
			ReservedPrefixes: []string{"__MACOSX"},
			PhotoPrefix:      "galleries/photos",
			ArchivePrefix:    "galleries/archives",
			FailFast:         false,
		},

		Feed: FeedServerConfig{
			Title:       "Fish in the Wind",
			Link:        "/feeds/recent",
			Description: "Recent posts",
			Size:        10,
			CacheTTL:    "1h",
		},

		Assets: AssetsServerConfig{
			BaseHTML:     "base.html",
			TemplateDirs: []string{"./templates"},
			StaticDirs:   []string{"./static"},
			Gzip:         true,
			ACL:          "public-read",
			Headers: map[string]string{
				"Cache-Control": "max-age=31536000, public",
			},
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.sqlite.busy_timeout", defaults.Metadata.SQLite.BusyTimeout)
	viper.SetDefault("metadata.sqlite.debug", defaults.Metadata.SQLite.Debug)

	viper.SetDefault("blob.backend", defaults.Blob.Backend)
	viper.SetDefault("blob.local_root", defaults.Blob.LocalRoot)
	viper.SetDefault("blob.scratch_root", defaults.Blob.ScratchRoot)
	viper.SetDefault("blob.media_url", defaults.Blob.MediaURL)
	viper.SetDefault("blob.s3.endpoint", defaults.Blob.S3.Endpoint)
	viper.SetDefault("blob.s3.region", defaults.Blob.S3.Region)
	viper.SetDefault("blob.s3.bucket", defaults.Blob.S3.Bucket)
	viper.SetDefault("blob.s3.access_key", defaults.Blob.S3.AccessKey)
	viper.SetDefault("blob.s3.secret_key", defaults.Blob.S3.SecretKey)
	viper.SetDefault("blob.s3.use_ssl", defaults.Blob.S3.UseSSL)
	viper.SetDefault("blob.s3.auto_create_bucket", defaults.Blob.S3.AutoCreateBucket)

	viper.SetDefault("http.address", defaults.HTTP.Address)
	viper.SetDefault("http.page_size", defaults.HTTP.PageSize)
	viper.SetDefault("http.max_upload_size", defaults.HTTP.MaxUploadSize)

	viper.SetDefault("gallery.max_title_length", defaults.Gallery.MaxTitleLength)
	viper.SetDefault("gallery.max_pixels", defaults.Gallery.MaxPixels)
	viper.SetDefault("gallery.reserved_prefixes", defaults.Gallery.ReservedPrefixes)
	viper.SetDefault("gallery.photo_prefix", defaults.Gallery.PhotoPrefix)
	viper.SetDefault("gallery.archive_prefix", defaults.Gallery.ArchivePrefix)
	viper.SetDefault("gallery.fail_fast", defaults.Gallery.FailFast)

	viper.SetDefault("feed.title", defaults.Feed.Title)
	viper.SetDefault("feed.link", defaults.Feed.Link)
	viper.SetDefault("feed.description", defaults.Feed.Description)
	viper.SetDefault("feed.author", defaults.Feed.Author)
	viper.SetDefault("feed.size", defaults.Feed.Size)
	viper.SetDefault("feed.redis_addr", defaults.Feed.RedisAddr)
	viper.SetDefault("feed.redis_password", defaults.Feed.RedisPassword)
	viper.SetDefault("feed.redis_db", defaults.Feed.RedisDB)
	viper.SetDefault("feed.cache_ttl", defaults.Feed.CacheTTL)

	viper.SetDefault("assets.base_html", defaults.Assets.BaseHTML)
	viper.SetDefault("assets.template_dirs", defaults.Assets.TemplateDirs)
	viper.SetDefault("assets.static_dirs", defaults.Assets.StaticDirs)
	viper.SetDefault("assets.gzip", defaults.Assets.Gzip)
	viper.SetDefault("assets.acl", defaults.Assets.ACL)
	viper.SetDefault("assets.headers", defaults.Assets.Headers)
}
