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
	"maps"
	"sort"
)

// Row is a single table row keyed by column name.
type Row map[string]interface{}

// Clone returns a shallow copy of the row. A nil row clones to nil.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Has reports whether the column is present, even with a nil value.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Without returns a copy of the row minus the given columns.
func (r Row) Without(columns ...string) Row {
	out := r.Clone()
	for _, c := range columns {
		delete(out, c)
	}
	return out
}

// Condition maps a column to its expected value. Entries are combined with AND.
//
// A nil value matches NULL and a slice value matches any of its elements.
type Condition map[string]interface{}

// Columns returns the condition's columns in sorted order.
func (c Condition) Columns() []string {
	cols := make([]string, 0, len(c))
	for k := range c {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Pair is one entry of a key/value projection.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// Pairs is an ordered key/value projection. Keys are unique; a repeated key
// keeps its first position and takes the last value.
type Pairs []Pair

// Put appends the pair, or overwrites the value in place when the key exists.
func (p Pairs) Put(key, value interface{}) Pairs {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Pair{Key: key, Value: value})
}

func (p Pairs) Keys() []interface{} {
	keys := make([]interface{}, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

func (p Pairs) Values() []interface{} {
	values := make([]interface{}, len(p))
	for i, pair := range p {
		values[i] = pair.Value
	}
	return values
}

// Map drops the ordering and returns the pairs as a map.
func (p Pairs) Map() map[interface{}]interface{} {
	m := make(map[interface{}]interface{}, len(p))
	for _, pair := range p {
		m[pair.Key] = pair.Value
	}
	return m
}
