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
	"regexp"
	"strings"
	"unicode"
)

const (
	// TableNameSeparator joins the words of a derived table name.
	TableNameSeparator = "_"

	repositorySuffix = "Repository"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableNameFromType derives a table name from a repository type identifier.
//
// The identifier may be qualified by a package path or namespace; only the
// last segment is used. A trailing "Repository" is removed and a separator is
// inserted before every uppercase letter except the first:
//
//	TableNameFromType("app/model.UserAccountRepository") == "user_account"
//
// The result is empty when nothing is left after stripping the suffix.
func TableNameFromType(name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "*")
	if i := strings.LastIndexAny(name, `./\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, repositorySuffix)

	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteString(TableNameSeparator)
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsValidTableName reports whether name is a plain or schema-qualified SQL
// identifier made of letters, digits and underscores.
func IsValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}
