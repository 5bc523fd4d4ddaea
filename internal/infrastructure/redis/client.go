package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// Client is a string store over a single redis connection pool. Every key is
// scoped by the client's namespace so several tools can share one database.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient dials url and verifies the server answers before returning
func NewClient(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = dialTimeout
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Namespace returns a client sharing the same pool whose keys live under
// the given colon-separated prefix, nested inside any existing one.
func (c *Client) Namespace(parts ...string) *Client {
	ns := c.namespace
	for _, p := range parts {
		p = strings.Trim(p, ":")
		if p == "" {
			continue
		}
		if ns != "" {
			ns += ":"
		}
		ns += p
	}
	return &Client{rdb: c.rdb, namespace: ns}
}

// Key is the fully qualified redis key for name
func (c *Client) Key(name string) string {
	if c.namespace == "" {
		return name
	}
	return c.namespace + ":" + name
}

// Lookup reads name. ok is false when the key does not exist.
func (c *Client) Lookup(ctx context.Context, name string) (value string, ok bool, err error) {
	value, err = c.rdb.Get(ctx, c.Key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Store writes name without expiry
func (c *Client) Store(ctx context.Context, name, value string) error {
	return c.rdb.Set(ctx, c.Key(name), value, 0).Err()
}

// Remove deletes name and reports whether it existed
func (c *Client) Remove(ctx context.Context, name string) (bool, error) {
	n, err := c.rdb.Del(ctx, c.Key(name)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the shared pool; namespaced copies become unusable too
func (c *Client) Close() error {
	return c.rdb.Close()
}
