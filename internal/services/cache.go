package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/redis/go-redis/v9"
)

// LinkCache keeps hot slugs out of the database. Only links with no owner,
// no password and no usage budget are cached; everything else has per-visit
// state the pipeline must read fresh. Nil-safe: a nil client disables it.
type LinkCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLinkCache(rdb *redis.Client, ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LinkCache{rdb: rdb, ttl: ttl}
}

// Cacheable reports whether a link's resolution is state-free enough to
// serve from cache.
func Cacheable(link *models.ShortLink) bool {
	return link.UserID == nil && link.PasswordHash == "" && link.Uses == 0
}

func (c *LinkCache) Get(ctx context.Context, slug string) (*models.ShortLink, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, "link:"+slug).Result()
	if err != nil {
		return nil, false
	}

	var link models.ShortLink
	if err := json.Unmarshal([]byte(val), &link); err != nil {
		return nil, false
	}
	return &link, true
}

func (c *LinkCache) Set(ctx context.Context, link *models.ShortLink) {
	if c == nil || c.rdb == nil || !Cacheable(link) {
		return
	}

	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, "link:"+link.Slug, data, c.ttl)
}

func (c *LinkCache) Invalidate(ctx context.Context, slug string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, "link:"+slug)
}
