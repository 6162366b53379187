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
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	keyPrefix    = "tablerepo"
	keySeparator = ":"
)

var (
	// ErrKeyNotFound is returned by Storage.Get on a cache miss.
	ErrKeyNotFound = errors.New("cache key not found")

	// ErrSerializationFailed wraps msgpack encode and decode failures.
	ErrSerializationFailed = errors.New("cache serialization failed")
)

// Storage is the cache backend a repository can carry. Values are encoded
// with msgpack, so dest in Get must be a pointer to a type compatible with
// what was stored.
type Storage interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Key builds "tablerepo:<table>:<op>[:<hash>]". parts, when present, are
// hashed with xxhash over their msgpack encoding with map keys sorted, so
// equal conditions produce equal keys.
func Key(table, op string, parts ...interface{}) string {
	key := strings.Join([]string{keyPrefix, table, op}, keySeparator)
	if len(parts) == 0 {
		return key
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(parts); err != nil {
		return key + keySeparator + fmt.Sprintf("%v", parts)
	}
	return fmt.Sprintf("%s%s%016x", key, keySeparator, xxhash.Sum64(buf.Bytes()))
}

// Remember returns the cached value under key, or calls load and caches its
// result for ttl. A failed cache write does not fail the call.
func Remember[T any](ctx context.Context, s Storage, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if s == nil {
		return load(ctx)
	}
	err := s.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return load(ctx)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = s.Set(ctx, key, value, ttl)
	return value, nil
}

func encode(value interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

func decode(data []byte, dest interface{}) error {
	if err := msgpack.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return nil
}
