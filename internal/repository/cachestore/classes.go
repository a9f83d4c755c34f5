// Package cachestore decorates stores with a redis read-through cache.
package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/course-enrollment/internal/config"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

// Classes caches ListByStatus results under a generation number.  Create
// and SetStatus go to the wrapped store and then bump the generation, so a
// fill that read the store before the write lands under a key nobody reads
// again and ages out with its TTL.  Redis failures are logged and the
// wrapped store answers instead.
type Classes struct {
	repository.ClassStore
	rdb redis.Cmdable
	cfg config.CacheConfig
	log logrus.FieldLogger
}

// WrapClasses returns next unchanged when caching is disabled or there is
// no redis client.
func WrapClasses(next repository.ClassStore, cfg config.CacheConfig, rdb *redis.Client, log logrus.FieldLogger) repository.ClassStore {
	if !cfg.Enabled || rdb == nil {
		return next
	}
	return &Classes{ClassStore: next, rdb: rdb, cfg: cfg, log: log}
}

func (c *Classes) genKey() string {
	return c.cfg.Prefix + ":classes:gen"
}

func (c *Classes) key(gen int64, status model.ClassStatus) string {
	return c.cfg.Prefix + ":classes:" + strconv.FormatInt(gen, 10) + ":status:" + string(status)
}

func (c *Classes) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Classes) ListByStatus(ctx context.Context, status model.ClassStatus) ([]model.Class, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.WithError(err).Warn("cache: generation read failed")
		return c.ClassStore.ListByStatus(ctx, status)
	}
	key := c.key(gen, status)
	bs, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []model.Class
		if jerr := json.Unmarshal(bs, &out); jerr == nil {
			return out, nil
		}
		c.log.WithField("key", key).Warn("cache: dropping undecodable entry")
	case !errors.Is(err, redis.Nil):
		c.log.WithError(err).WithField("key", key).Warn("cache: read failed")
	}

	classes, err := c.ClassStore.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if bs, err := json.Marshal(classes); err == nil {
		if err := c.rdb.SetEx(ctx, key, bs, c.cfg.TTL).Err(); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("cache: write failed")
		}
	}
	return classes, nil
}

func (c *Classes) Create(ctx context.Context, cl model.Class) (repository.InsertResult, error) {
	res, err := c.ClassStore.Create(ctx, cl)
	if err == nil {
		c.invalidate(ctx)
	}
	return res, err
}

func (c *Classes) SetStatus(ctx context.Context, id string, status model.ClassStatus) (repository.UpdateResult, error) {
	res, err := c.ClassStore.SetStatus(ctx, id, status)
	if err == nil && res.MatchedCount > 0 {
		c.invalidate(ctx)
	}
	return res, err
}

func (c *Classes) invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		c.log.WithError(err).Warn("cache: invalidation failed")
	}
}
