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

// Package repository provides table-scoped repositories built on Bun. A
// TableRepository reads and upserts untyped rows of one table: lazy select
// builders, lookups by key or condition, key/value projections, pagination
// and before-save hooks.
//
//	users, err := repository.New(db, repository.WithTypeName("UserRepository"))
//	row, err := users.Save(ctx, types.Row{"email": "a@b.c"}, "")
//	found := users.FindBy(types.Condition{"status": "active"})
package repository
