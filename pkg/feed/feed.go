// Package feed renders the RSS feed of recent posts.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/db/models"
	"github.com/mwantia/wind/pkg/log"
)

const cacheKey = "recent"

// PostSource supplies the newest published posts.
type PostSource interface {
	Recent(ctx context.Context, limit int) ([]models.Post, error)
}

type Builder struct {
	cfg   config.FeedServerConfig
	posts PostSource
	cache Cache
	ttl   time.Duration
	log   log.LoggerService

	now func() time.Time
}

func NewBuilder(cfg config.FeedServerConfig, posts PostSource, cache Cache, logger log.LoggerService) (*Builder, error) {
	if cfg.Size <= 0 {
		cfg.Size = 10
	}
	if cache == nil {
		cache = NopCache{}
	}

	ttl := time.Hour
	if cfg.CacheTTL != "" {
		parsed, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid feed cache ttl %q: %w", cfg.CacheTTL, err)
		}
		ttl = parsed
	}

	return &Builder{
		cfg:   cfg,
		posts: posts,
		cache: cache,
		ttl:   ttl,
		log:   logger.Named("feed"),
		now:   time.Now,
	}, nil
}

// RSS returns the RSS 2.0 document, served from cache when possible.
func (b *Builder) RSS(ctx context.Context) (string, error) {
	if data, ok, err := b.cache.Get(ctx, cacheKey); err != nil {
		b.log.Warn("Failed to read feed cache: %v", err)
	} else if ok {
		return string(data), nil
	}

	rss, err := b.render(ctx)
	if err != nil {
		return "", err
	}

	if err := b.cache.Set(ctx, cacheKey, []byte(rss), b.ttl); err != nil {
		b.log.Warn("Failed to write feed cache: %v", err)
	}
	return rss, nil
}

func (b *Builder) render(ctx context.Context) (string, error) {
	posts, err := b.posts.Recent(ctx, b.cfg.Size)
	if err != nil {
		return "", fmt.Errorf("failed to load recent posts: %w", err)
	}

	feed := &feeds.Feed{
		Title:       b.cfg.Title,
		Link:        &feeds.Link{Href: b.cfg.Link},
		Description: b.cfg.Description,
		Created:     b.now(),
	}
	if b.cfg.Author != "" {
		feed.Author = &feeds.Author{Name: b.cfg.Author}
	}

	base := strings.TrimSuffix(b.cfg.Link, "/feeds/recent")
	for _, post := range posts {
		link := base + "/post/" + post.Slug
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: link},
			Description: post.Body,
			Id:          link,
			Created:     post.PublishAt,
			Updated:     post.UpdatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to render rss: %w", err)
	}
	return rss, nil
}
