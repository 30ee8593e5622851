// Package session stores per-visitor cart and checkout state. Carts are
// session-scoped: they live for TTL after the last write and are never tied to
// an account.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/01moynul/farinez-golang/internal/cart"
	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/redis/go-redis/v9"
)

// TTL is how long an idle session is kept.
const TTL = 24 * time.Hour

// State is everything remembered for one visitor.
type State struct {
	Cart     cart.Cart       `json:"cart"`
	Checkout checkout.Wizard `json:"checkout"`
}

// Store loads and saves session state. Load of an unknown id returns a fresh
// state, not an error.
type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, st State) error
	Delete(ctx context.Context, id string) error
}

// Fresh is the state of a new visitor.
func Fresh(geocoded bool) State {
	return State{Checkout: checkout.NewWizard(geocoded)}
}

// --- Redis ---

// RedisStore keeps each session as a JSON blob under "session:<id>".
type RedisStore struct {
	rdb      *redis.Client
	geocoded bool
}

func NewRedisStore(ctx context.Context, rdb *redis.Client, geocoded bool) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis client must be non-nil")
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, geocoded: geocoded}, nil
}

func key(id string) string {
	return "session:" + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (State, error) {
	val, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Fresh(s.geocoded), nil
		}
		return State{}, fmt.Errorf("load session: %w", err)
	}
	return decode(val, s.geocoded)
}

func (s *RedisStore) Save(ctx context.Context, id string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, key(id), data, TTL).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decode(data []byte, geocoded bool) (State, error) {
	st := Fresh(geocoded)
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	// The mode follows the server configuration, not what was stored.
	st.Checkout.Geocoded = geocoded
	return st, nil
}

// --- Memory ---

type memEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local Store used when no Redis is configured and
// in tests. Entries are stored encoded so callers never share slices.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memEntry
	geocoded bool
	now      func() time.Time
}

func NewMemoryStore(geocoded bool) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), geocoded: geocoded, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (State, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.now().After(e.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return Fresh(s.geocoded), nil
	}
	return decode(e.data, s.geocoded)
}

func (s *MemoryStore) Save(_ context.Context, id string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.mu.Lock()
	s.entries[id] = memEntry{data: data, expires: s.now().Add(TTL)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
