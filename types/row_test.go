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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowCloneAndWithout(t *testing.T) {
	row := Row{"id": 1, "title": "a", "deleted_at": nil}
	clone := row.Clone()
	clone["title"] = "b"
	assert.Equal(t, "a", row["title"])
	assert.True(t, row.Has("deleted_at"))
	assert.False(t, row.Has("missing"))

	assert.Equal(t, Row{"title": "a", "deleted_at": nil}, row.Without("id"))
	assert.Len(t, row, 3)

	var empty Row
	assert.Nil(t, empty.Clone())
}

func TestConditionColumnsSorted(t *testing.T) {
	c := Condition{"status": "x", "active": 1, "id": nil}
	assert.Equal(t, []string{"active", "id", "status"}, c.Columns())
	assert.Empty(t, Condition(nil).Columns())
}

func TestPairsPut(t *testing.T) {
	var p Pairs
	p = p.Put(1, "B").Put(2, "A").Put(1, "C")
	assert.Equal(t, Pairs{{Key: 1, Value: "C"}, {Key: 2, Value: "A"}}, p)
	assert.Equal(t, []interface{}{1, 2}, p.Keys())
	assert.Equal(t, []interface{}{"C", "A"}, p.Values())
	assert.Equal(t, map[interface{}]interface{}{1: "C", 2: "A"}, p.Map())
}

func TestPageRequestDefaults(t *testing.T) {
	req := NewPageRequestWithOrders(0, 0, "id DESC")
	assert.Equal(t, 1, req.GetPage())
	assert.Equal(t, 10, req.GetPageSize())
	assert.Equal(t, 0, req.GetOffset())
	assert.Equal(t, []string{"id DESC"}, req.GetOrders())

	req = NewPageRequestWithCondition(3, 20, Condition{"active": 1})
	assert.Equal(t, 40, req.GetOffset())
	assert.Equal(t, Condition{"active": 1}, req.GetCondition())

	page := NewDefaultPagination[Row](1, 20)
	assert.Equal(t, 0, page.Pages())
	page.Total = 41
	assert.Equal(t, 3, page.Pages())
}
