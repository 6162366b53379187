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

package tablerepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"
	"github.com/tomoncle/tablerepo/repository"

	"github.com/uptrace/bun"
)

// ErrNotInitialized is returned by NewRepository before the global database
// is connected.
var ErrNotInitialized = errors.New("database not initialized")

// Registry holds the repositories declared in a Config, all sharing the
// global database handle and one cache storage.
type Registry struct {
	db      *bun.DB
	storage cache.Storage
	repos   map[string]*repository.TableRepository
}

// Open connects the global database, builds the cache storage when enabled
// and one repository per configured table. On error nothing is left open.
func Open(ctx context.Context, cfg *Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("configuration cannot be empty")
	}
	cfg.Log.apply()
	storage, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(ctx, &cfg.Database)
	if err != nil {
		closeStorage(storage)
		return nil, err
	}

	reg := &Registry{
		db:      db,
		storage: storage,
		repos:   make(map[string]*repository.TableRepository, len(cfg.Tables)),
	}
	for name, tc := range cfg.Tables {
		repo, err := repository.FromConfig(db, tc, repository.WithCacheStorage(storage))
		if err != nil {
			_ = reg.Close()
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		reg.repos[name] = repo
		database.GetLogger().Debug("repository registered", "name", name, "table", repo.TableName())
	}
	return reg, nil
}

// Repository returns the repository registered under name.
func (r *Registry) Repository(name string) (*repository.TableRepository, bool) {
	repo, ok := r.repos[name]
	return repo, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.repos))
	for name := range r.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DB() *bun.DB { return r.db }

func (r *Registry) Cache() cache.Storage { return r.storage }

// Close closes the cache storage and the global database.
func (r *Registry) Close() error {
	closeStorage(r.storage)
	return database.CloseDB()
}

// NewRepository returns a repository bound to the global database.
func NewRepository(opts ...repository.Option) (*repository.TableRepository, error) {
	db := database.GetDB()
	if db == nil {
		return nil, ErrNotInitialized
	}
	return repository.New(db, opts...)
}

func closeStorage(storage cache.Storage) {
	if c, ok := storage.(io.Closer); ok {
		_ = c.Close()
	}
}
