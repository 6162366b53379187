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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"
	"github.com/tomoncle/tablerepo/repository"
	"github.com/tomoncle/tablerepo/utils"
	"gopkg.in/yaml.v3"
)

// Config is the file layout read by LoadConfig.
//
//	database:
//	  connection:
//	    type: sqlite
//	    dbname: ${APP_DB}
//	cache:
//	  enabled: true
//	  driver: memory
//	log:
//	  level: info
//	  format: text
//	tables:
//	  users: {type: UserRepository}
//	  items: {table: item, primary_key: item_id}
type Config struct {
	Database database.Config                   `yaml:"database"`
	Cache    cache.Config                      `yaml:"cache"`
	Log      LogConfig                         `yaml:"log"`
	Tables   map[string]repository.TableConfig `yaml:"tables"`
}

// LogConfig sets the level of every named logger and the format of loggers
// created afterwards. Empty fields keep the LOG_LEVEL and LOG_FORMAT
// environment defaults.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

func (c LogConfig) apply() {
	if c.Format != "" {
		utils.ConfigureLogFormat(c.Format)
	}
	if c.Level != "" {
		utils.ConfigureLogLevel(c.Level)
	}
}

// DefaultConfig returns a config with the database and cache defaults and no
// tables.
func DefaultConfig() *Config {
	return &Config{
		Database: database.Config{ConnectionConfig: *database.DefaultConnectionConfig()},
		Cache:    *cache.DefaultConfig(),
		Tables:   map[string]repository.TableConfig{},
	}
}

// LoadConfig reads a YAML config file. A .env file next to it is loaded
// first when present, without overriding variables already set, and ${VAR}
// references in the file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
