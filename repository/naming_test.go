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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNameFromType(t *testing.T) {
	cases := map[string]string{
		"FooBarRepository":                 "foo_bar",
		"UserRepository":                   "user",
		"ItemRepository":                   "item",
		"UserAccount":                      "user_account",
		"*repository.OrderLineRepository":  "order_line",
		"app/model.UserAccountRepository":  "user_account",
		`App\Repository\ProductRepository`: "product",
		"Repository":                       "",
		"":                                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, TableNameFromType(in), in)
	}
}

func TestIsValidTableName(t *testing.T) {
	for _, name := range []string{"user", "user_account", "_tmp", "public.user", "T1"} {
		assert.True(t, IsValidTableName(name), name)
	}
	for _, name := range []string{"", "1user", "user account", "a.b.c", "user;", `"user"`} {
		assert.False(t, IsValidTableName(name), name)
	}
}
