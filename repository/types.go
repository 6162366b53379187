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

package repository

import (
	"context"

	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"
	"github.com/tomoncle/tablerepo/types"

	"github.com/uptrace/bun"
)

const (
	DefaultPrimaryKey  = "id"
	DefaultValueColumn = "title"
	DefaultActiveFlag  = "active"
)

// BeforeSaveHook observes the candidate values of a Save before anything is
// written. It receives a copy: changes it makes are not persisted.
type BeforeSaveHook func(ctx context.Context, values types.Row)

// QueryRepository exposes lazy query builders scoped to the table.
type QueryRepository interface {
	FindAll() *bun.SelectQuery
	FindBy(cond types.Condition) *bun.SelectQuery
	GetAllActive(flag string) *bun.SelectQuery
}

// ReadRepository runs reads that return rows. A missing row is reported with
// a false flag, never an error.
type ReadRepository interface {
	Get(ctx context.Context, id interface{}) (types.Row, bool, error)
	GetOneBy(ctx context.Context, cond types.Condition) (types.Row, bool, error)
	GetAllAsArray(ctx context.Context, value, key string) (types.Pairs, error)
	GetAllAsArrayBy(ctx context.Context, cond types.Condition, value, key string) (types.Pairs, error)
	Count(ctx context.Context, cond types.Condition) (int, error)
}

// PageQueryRepository defines pagination functionality for listing rows.
type PageQueryRepository interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[types.Row], error)
}

// WriteRepository persists rows.
type WriteRepository interface {
	Save(ctx context.Context, values types.Row, key string) (types.Row, error)
	IsPersistent(ctx context.Context, values types.Row, key string) (bool, error)
	Delete(ctx context.Context, id interface{}) (int64, error)
	OnBeforeSave(hook BeforeSaveHook)
}

// Repository combines every table-scoped operation.
type Repository interface {
	QueryRepository
	ReadRepository
	PageQueryRepository
	WriteRepository
	TableName() string
	PrimaryKey() string
	CacheStorage() cache.Storage
	SetCacheStorage(storage cache.Storage)
}

type options struct {
	table      string
	typeName   string
	primaryKey string
	logger     database.Logger
	cache      cache.Storage
}

// Option configures a repository built by New.
type Option func(*options)

// WithTable sets the table name explicitly. It wins over WithTypeName.
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

// WithTypeName derives the table name from a repository type identifier,
// see TableNameFromType.
func WithTypeName(name string) Option {
	return func(o *options) { o.typeName = name }
}

func WithPrimaryKey(column string) Option {
	return func(o *options) { o.primaryKey = column }
}

func WithLogger(logger database.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithCacheStorage(storage cache.Storage) Option {
	return func(o *options) { o.cache = storage }
}
