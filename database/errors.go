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

package database

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

func (e SQLError) String() string {
	switch e {
	case NoRowsErr:
		return "no_rows"
	case NoColumnErr:
		return "no_column"
	case NoTableErr:
		return "no_table"
	case DuplicateKeyErr:
		return "duplicate_key"
	case NotNullViolationErr:
		return "not_null_violation"
	case ForeignKeyViolationErr:
		return "foreign_key_violation"
	case CheckConstraintViolationErr:
		return "check_constraint_violation"
	case DataTruncatedErr:
		return "data_truncated"
	case InvalidTypeCastErr:
		return "invalid_type_cast"
	default:
		return "unknown"
	}
}

// SQLErrorInfo is the driver-neutral description of a store error.
// Code holds the driver's own code: a MySQL error number, a Postgres
// SQLSTATE or an SQLite result name.
type SQLErrorInfo struct {
	Kind    SQLError
	Code    string
	Message string
}

var sqlStateKinds = map[string]SQLError{
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23503": ForeignKeyViolationErr,
	"23514": CheckConstraintViolationErr,
	"22001": DataTruncatedErr,
	"42804": InvalidTypeCastErr,
	"42703": NoColumnErr,
	"42P01": NoTableErr,
}

var mysqlNumberKinds = map[uint16]SQLError{
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
	1054: NoColumnErr,
	1146: NoTableErr,
}

// ClassifyError maps a driver error onto a SQLError kind. It returns nil for
// a nil error and for errors it does not recognize as coming from a store.
func ClassifyError(err error) *SQLErrorInfo {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &SQLErrorInfo{Kind: NoRowsErr, Message: err.Error()}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return &SQLErrorInfo{
			Kind:    mysqlNumberKinds[mysqlErr.Number],
			Code:    strconv.Itoa(int(mysqlErr.Number)),
			Message: mysqlErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &SQLErrorInfo{
			Kind:    sqlStateKinds[string(pqErr.Code)],
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &SQLErrorInfo{
			Kind:    sqlStateKinds[pgErr.Code],
			Code:    pgErr.Code,
			Message: pgErr.Message,
		}
	}

	// sqlite drivers are picked by sqliteshim at build time, so fall back to
	// the message text shared by both of them. Postgres errors that lost
	// their driver type keep their SQLSTATE as the code.
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "unique constraint failed"):
		return &SQLErrorInfo{Kind: DuplicateKeyErr, Code: "SQLITE_CONSTRAINT_UNIQUE", Message: err.Error()}
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "sqlstate 23505"):
		return &SQLErrorInfo{Kind: DuplicateKeyErr, Code: "23505", Message: err.Error()}
	case strings.Contains(s, "not null constraint failed"):
		return &SQLErrorInfo{Kind: NotNullViolationErr, Code: "SQLITE_CONSTRAINT_NOTNULL", Message: err.Error()}
	case strings.Contains(s, "sqlstate 23502"):
		return &SQLErrorInfo{Kind: NotNullViolationErr, Code: "23502", Message: err.Error()}
	case strings.Contains(s, "foreign key constraint failed"):
		return &SQLErrorInfo{Kind: ForeignKeyViolationErr, Code: "SQLITE_CONSTRAINT_FOREIGNKEY", Message: err.Error()}
	case strings.Contains(s, "sqlstate 23503"):
		return &SQLErrorInfo{Kind: ForeignKeyViolationErr, Code: "23503", Message: err.Error()}
	case strings.Contains(s, "check constraint failed"):
		return &SQLErrorInfo{Kind: CheckConstraintViolationErr, Code: "SQLITE_CONSTRAINT_CHECK", Message: err.Error()}
	case strings.Contains(s, "sqlstate 23514"):
		return &SQLErrorInfo{Kind: CheckConstraintViolationErr, Code: "23514", Message: err.Error()}
	case strings.Contains(s, "no such column"):
		return &SQLErrorInfo{Kind: NoColumnErr, Code: "SQLITE_ERROR", Message: err.Error()}
	case strings.Contains(s, "no such table"):
		return &SQLErrorInfo{Kind: NoTableErr, Code: "SQLITE_ERROR", Message: err.Error()}
	}
	return nil
}

// IsSqlError reports whether err was recognized and, if so, its kind.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	info := ClassifyError(err)
	if info == nil {
		return false, UnknownErr
	}
	return true, info.Kind
}

// IsDuplicateKey reports whether err is a unique or primary key violation.
func IsDuplicateKey(err error) bool {
	info := ClassifyError(err)
	return info != nil && info.Kind == DuplicateKeyErr
}
