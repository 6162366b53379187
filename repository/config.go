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
	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"

	"github.com/uptrace/bun"
)

// TableConfig describes a repository in a configuration file. Table is
// decoded untyped so a non-string value is reported instead of coerced.
type TableConfig struct {
	Table      interface{} `json:"table" yaml:"table"`
	TypeName   string      `json:"type" yaml:"type"`
	PrimaryKey string      `json:"primary_key" yaml:"primary_key"`
}

// Options converts the config to constructor options.
func (c TableConfig) Options() ([]Option, error) {
	var opts []Option
	switch t := c.Table.(type) {
	case nil:
	case string:
		opts = append(opts, WithTable(t))
	default:
		return nil, invalidArgument("table must be a string, got %T (%v)", c.Table, c.Table)
	}
	if c.TypeName != "" {
		opts = append(opts, WithTypeName(c.TypeName))
	}
	if c.PrimaryKey != "" {
		opts = append(opts, WithPrimaryKey(c.PrimaryKey))
	}
	return opts, nil
}

// FromConfig builds a repository from cfg. Extra options are applied after
// the ones taken from cfg.
func FromConfig(db bun.IDB, cfg TableConfig, extra ...Option) (*TableRepository, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(db, append(opts, extra...)...)
}

// FromConfigWith is FromConfig with a logger and cache storage set.
func FromConfigWith(db bun.IDB, cfg TableConfig, logger database.Logger, storage cache.Storage) (*TableRepository, error) {
	return FromConfig(db, cfg, WithLogger(logger), WithCacheStorage(storage))
}
