/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID    int64  `msgpack:"id"`
	Email string `msgpack:"email"`
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tablerepo:user:all", Key("user", "all"))

	a := Key("user", "by", map[string]interface{}{"a": 1, "b": "x"})
	b := Key("user", "by", map[string]interface{}{"b": "x", "a": 1})
	c := Key("user", "by", map[string]interface{}{"a": 2, "b": "x"})
	assert.True(t, strings.HasPrefix(a, "tablerepo:user:by:"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	var out cachedUser
	assert.ErrorIs(t, s.Get(ctx, "k", &out), ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", cachedUser{ID: 7, Email: "a@b.c"}, 0))
	require.NoError(t, s.Get(ctx, "k", &out))
	assert.Equal(t, cachedUser{ID: 7, Email: "a@b.c"}, out)

	require.NoError(t, s.Delete(ctx, "k", "missing"))
	assert.ErrorIs(t, s.Get(ctx, "k", &out), ErrKeyNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStorageExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStorage()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	var out string
	require.NoError(t, s.Get(ctx, "k", &out))
	assert.Equal(t, "v", out)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, s.Get(ctx, "k", &out), ErrKeyNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStorageDefaultTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStorageWithTTL(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "default", "v", 0))
	require.NoError(t, s.Set(ctx, "explicit", "v", time.Hour))

	now = now.Add(time.Minute)
	var out string
	assert.ErrorIs(t, s.Get(ctx, "default", &out), ErrKeyNotFound)
	require.NoError(t, s.Get(ctx, "explicit", &out))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := Remember(ctx, s, "titles", 0, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = Remember(ctx, s, "titles", 0, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = Remember(ctx, s, "other", 0, func(context.Context) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	// nil storage always loads
	_, err = Remember[[]string](ctx, nil, "titles", 0, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewFromConfig(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	cfg := DefaultConfig()
	cfg.Enabled = true
	s, err = New(cfg)
	require.NoError(t, err)
	require.IsType(t, &MemoryStorage{}, s)
	assert.Equal(t, cfg.DefaultTTL, s.(*MemoryStorage).defaultTTL)

	cfg.Driver = "memcached"
	_, err = New(cfg)
	assert.ErrorContains(t, err, "unsupported cache driver")

	cfg.Driver = DriverRedis
	cfg.Port = 0
	_, err = New(cfg)
	assert.ErrorContains(t, err, "redis port")

	cfg.Port = 6379
	s, err = New(cfg)
	require.NoError(t, err)
	rs, ok := s.(*RedisStorage)
	require.True(t, ok)
	assert.NoError(t, rs.Close())
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	s := NewRedisStorageFromClient(redis.NewClient(&redis.Options{Addr: addr}), time.Minute)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Ping(ctx))

	key := Key("user", "test", time.Now().UnixNano())
	var out cachedUser
	assert.ErrorIs(t, s.Get(ctx, key, &out), ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, key, cachedUser{ID: 1, Email: "r@b.c"}, 0))
	require.NoError(t, s.Get(ctx, key, &out))
	assert.Equal(t, int64(1), out.ID)

	require.NoError(t, s.Delete(ctx, key))
	assert.ErrorIs(t, s.Get(ctx, key, &out), ErrKeyNotFound)
}
