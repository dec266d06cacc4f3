package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	EventsListKeyPrefix = "cache:events:list:"
	EventsItemKeyPrefix = "cache:events:item:"
)

type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventsList drops every cached list page.
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	if ci == nil {
		return
	}
	iter := ci.rdb.Scan(ctx, 0, EventsListKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEventItem drops the cached single-event response for id.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id string) {
	if ci == nil {
		return
	}
	_ = ci.rdb.Del(ctx, EventsItemKeyPrefix+id).Err()
}
