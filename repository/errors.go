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
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a repository is built with a
	// missing, non-string or malformed table name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateEntry matches every *DuplicateEntryError via errors.Is.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// DuplicateEntryError reports a unique constraint violation raised by the
// store while saving a row. Code is the driver's own error code.
type DuplicateEntryError struct {
	Table   string
	Message string
	Code    string
	Err     error
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate entry in %s (code %s): %s", e.Table, e.Code, e.Message)
}

func (e *DuplicateEntryError) Unwrap() error { return e.Err }

func (e *DuplicateEntryError) Is(target error) bool { return target == ErrDuplicateEntry }

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
