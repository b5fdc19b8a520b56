package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockline-app/stockline/internal/sheets"
)

// SheetCache keeps ingested price-list entries in Redis. Ingestion is
// a pure function of the raw rows and the supplier config, so a cached
// result is valid until the underlying sheet changes and the TTL
// expires it.
type SheetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSheetCache instantiates the cache helper. A nil client disables
// caching and Fetch always calls the loader.
func NewSheetCache(client *redis.Client, ttl time.Duration) *SheetCache {
	return &SheetCache{client: client, ttl: ttl}
}

// Fetch loads the cached entries for the supplier key or populates
// them using the loader.
func (c *SheetCache) Fetch(ctx context.Context, supplierKey string, loader func(context.Context) ([]sheets.Entry, error)) ([]sheets.Entry, error) {
	if loader == nil {
		return nil, errors.New("catalog: sheet cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := sheetKey(supplierKey)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var entries []sheets.Entry
		if err := json.Unmarshal(payload, &entries); err == nil {
			return entries, nil
		}
		// Corrupt payload: fall through and repopulate.
	} else if err != redis.Nil {
		return nil, err
	}

	entries, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Invalidate drops the cached entries for the supplier key.
func (c *SheetCache) Invalidate(ctx context.Context, supplierKey string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, sheetKey(supplierKey)).Err()
}

func sheetKey(supplierKey string) string {
	return strings.Join([]string{"catalog", "sheet", supplierKey}, ":")
}
