package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

// Store keeps drafts between requests, keyed by session id.
type Store interface {
	Load(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, id string, d *Draft) error
	Delete(ctx context.Context, id string) error
}

func NewID() string {
	return uuid.NewString()
}

type memoryItem struct {
	draft   Draft
	expires time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: map[string]memoryItem{}, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNoSession
	}
	if m.ttl > 0 && m.now().After(it.expires) {
		delete(m.items, id)
		return nil, ErrNoSession
	}
	d := it.draft.clone()
	return &d, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = memoryItem{draft: d.clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// clone copies the line slices so stored drafts are not shared with callers.
func (d Draft) clone() Draft {
	c := d
	c.B = append(c.B[:0:0], d.B...)
	c.K = append(c.K[:0:0], d.K...)
	return c
}

// RedisStore keeps drafts as JSON under "draft:<id>" with a sliding TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return "draft:" + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Draft, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(id), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
