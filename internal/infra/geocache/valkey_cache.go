package geocache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/accessroute/internal/domain/search"
)

// ValkeyCache stores reverse geocoding results in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "accessroute:reverse"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// Get implements search.Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) (search.Place, bool, error) {
	cmd := c.client.B().Get().Key(c.key(key)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return search.Place{}, false, nil
		}
		return search.Place{}, false, err
	}
	var place search.Place
	if err := json.Unmarshal([]byte(payload), &place); err != nil {
		return search.Place{}, false, err
	}
	return place, true, nil
}

// Set implements search.Cache.
func (c *ValkeyCache) Set(ctx context.Context, key string, place search.Place, ttl time.Duration) error {
	payload, err := json.Marshal(place)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(k string) string {
	return c.prefix + ":" + k
}

var _ search.Cache = (*ValkeyCache)(nil)
