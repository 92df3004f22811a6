package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"github.com/totegamma/archivist/internal/domain"
)

const keyPrefix = "archivist:node:"

// Client is the subset of *memcache.Client the cache uses.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

type entry struct {
	Kind domain.Kind     `json:"kind"`
	Node json.RawMessage `json:"node"`
}

// NodeCache keeps resolved node views in memcached. Cache failures are
// logged and treated as misses.
type NodeCache struct {
	mc  Client
	ttl time.Duration
}

func NewNodeCache(mc Client, ttl time.Duration) *NodeCache {
	return &NodeCache{mc: mc, ttl: ttl}
}

func (c *NodeCache) Get(ctx context.Context, id string) (domain.NodeView, bool) {
	item, err := c.mc.Get(keyPrefix + id)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.warn("get", id, err)
		}
		return domain.NodeView{}, false
	}

	var e entry
	if err := json.Unmarshal(item.Value, &e); err != nil {
		c.warn("decode", id, err)
		return domain.NodeView{}, false
	}
	node := domain.NewNode(e.Kind)
	if node == nil {
		c.warn("decode", id, errors.Errorf("unknown kind %q", e.Kind))
		return domain.NodeView{}, false
	}
	if err := json.Unmarshal(e.Node, node); err != nil {
		c.warn("decode", id, err)
		return domain.NodeView{}, false
	}
	return domain.ViewOf(node), true
}

func (c *NodeCache) Set(ctx context.Context, view domain.NodeView) {
	if view.Node == nil {
		return
	}
	raw, err := json.Marshal(view.Node)
	if err != nil {
		c.warn("encode", view.ID, err)
		return
	}
	value, err := json.Marshal(entry{Kind: view.Kind, Node: raw})
	if err != nil {
		c.warn("encode", view.ID, err)
		return
	}
	err = c.mc.Set(&memcache.Item{
		Key:        keyPrefix + view.ID,
		Value:      value,
		Expiration: int32(c.ttl / time.Second),
	})
	if err != nil {
		c.warn("set", view.ID, err)
	}
}

func (c *NodeCache) Invalidate(ctx context.Context, id string) {
	err := c.mc.Delete(keyPrefix + id)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		c.warn("delete", id, err)
	}
}

func (c *NodeCache) warn(op, id string, err error) {
	slog.Warn(
		"node cache "+op+" failed",
		slog.String("id", id),
		slog.String("error", err.Error()),
		slog.String("module", "cache"),
	)
}
