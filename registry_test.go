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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"
	"github.com/tomoncle/tablerepo/repository"
	"github.com/tomoncle/tablerepo/types"
)

const testConfig = `
database:
  log_level: warn
  connection:
    type: sqlite
    dbname: ${TABLEREPO_TEST_DB}
    health_check_interval: 0s
log:
  level: warn
cache:
  enabled: true
  driver: memory
  default_ttl: 1m
tables:
  users:
    type: UserRepository
  items:
    table: item
    primary_key: id
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tablerepo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	env := "TABLEREPO_TEST_DB=" + filepath.Join(dir, "app.db") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TABLEREPO_TEST_DB") })
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, testConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "app.db"), cfg.Database.ConnectionConfig.DBName)
	assert.Equal(t, time.Duration(0), cfg.Database.ConnectionConfig.HealthCheckInterval)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, "UserRepository", cfg.Tables["users"].TypeName)
	assert.Equal(t, "item", cfg.Tables["items"].Table)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenRegistry(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	reg, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	assert.Equal(t, []string{"items", "users"}, reg.Names())
	assert.IsType(t, &cache.MemoryStorage{}, reg.Cache())
	assert.Same(t, reg.DB(), database.GetDB())

	_, err = reg.DB().ExecContext(ctx, `CREATE TABLE user (id INTEGER PRIMARY KEY, email TEXT UNIQUE)`)
	require.NoError(t, err)

	users, ok := reg.Repository("users")
	require.True(t, ok)
	assert.Equal(t, "user", users.TableName())
	assert.Same(t, reg.Cache(), users.CacheStorage())

	saved, err := users.Save(ctx, types.Row{"email": "a@x.io"}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, saved["id"])

	_, ok = reg.Repository("orders")
	assert.False(t, ok)

	global, err := NewRepository(repository.WithTable("user"))
	require.NoError(t, err)
	count, err := global.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenRejectsBadTable(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	cfg.Tables["broken"] = repository.TableConfig{Table: 42}

	_, err = Open(ctx, cfg)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
	assert.Nil(t, database.GetDB())

	_, err = NewRepository(repository.WithTable("user"))
	assert.ErrorIs(t, err, ErrNotInitialized)
}
