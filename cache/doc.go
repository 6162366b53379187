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

// Package cache provides the storage backends a table repository can carry
// in its cache slot: an in-process MemoryStorage and a Redis-backed
// RedisStorage. Values are msgpack encoded.
//
// Repositories never consult the cache themselves. Code that embeds a
// repository decides what to cache, usually through Remember:
//
//	titles, err := cache.Remember(ctx, repo.CacheStorage(),
//		cache.Key(repo.TableName(), "titles"), time.Minute,
//		func(ctx context.Context) (types.Pairs, error) {
//			return repo.GetAllAsArray(ctx, "", "")
//		})
package cache
