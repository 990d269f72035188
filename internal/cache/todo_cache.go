package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	model "todo-api.com/todo-api/internal/models"
)

// tombstone marks a deleted todo. Reads treat it as a miss, and because
// Add only writes absent keys, a read that raced the delete cannot put
// the old row back.
const tombstone = "-"

// RedisTodoCache keeps single todos as JSON strings keyed by id.
type RedisTodoCache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTodoCache(client rueidis.Client, prefix string, ttl time.Duration) *RedisTodoCache {
	return &RedisTodoCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisTodoCache) key(id uint) string {
	return c.prefix + "todo:" + strconv.FormatUint(uint64(id), 10)
}

func (c *RedisTodoCache) ttlSeconds() int64 {
	return int64(c.ttl / time.Second)
}

// Get returns nil, nil on a miss or a tombstone.
func (c *RedisTodoCache) Get(ctx context.Context, id uint) (*model.Todo, error) {
	cmd := c.client.B().Get().Key(c.key(id)).Build()
	b, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, err
	}
	if string(b) == tombstone {
		return nil, nil
	}

	var todo model.Todo
	if err := json.Unmarshal(b, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Add fills the cache from a read. It never replaces an existing entry,
// so a row written by Set or a tombstone always wins.
func (c *RedisTodoCache) Add(ctx context.Context, todo *model.Todo) error {
	b, err := json.Marshal(todo)
	if err != nil {
		return err
	}

	cmd := c.client.B().Set().Key(c.key(todo.ID)).Value(rueidis.BinaryString(b)).Nx().ExSeconds(c.ttlSeconds()).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil && !rueidis.IsRedisNil(err) {
		return err
	}
	return nil
}

// Set stores the row written by a mutation.
func (c *RedisTodoCache) Set(ctx context.Context, todo *model.Todo) error {
	b, err := json.Marshal(todo)
	if err != nil {
		return err
	}

	cmd := c.client.B().Set().Key(c.key(todo.ID)).Value(rueidis.BinaryString(b)).ExSeconds(c.ttlSeconds()).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *RedisTodoCache) Tombstone(ctx context.Context, id uint) error {
	cmd := c.client.B().Set().Key(c.key(id)).Value(tombstone).ExSeconds(c.ttlSeconds()).Build()
	return c.client.Do(ctx, cmd).Error()
}
