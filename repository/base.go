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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/tomoncle/tablerepo/cache"
	"github.com/tomoncle/tablerepo/database"
	"github.com/tomoncle/tablerepo/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

// TableRepository is a repository bound to one table. Rows are untyped
// column maps. Embed it to add table-specific queries.
type TableRepository struct {
	db         bun.IDB
	table      string
	primaryKey string
	logger     database.Logger
	cache      cache.Storage
	hooks      *hookList
}

// hookList is shared by a repository and its WithTx copies.
type hookList struct {
	mu    sync.RWMutex
	hooks []BeforeSaveHook
}

func (l *hookList) add(hook BeforeSaveHook) {
	l.mu.Lock()
	l.hooks = append(l.hooks, hook)
	l.mu.Unlock()
}

func (l *hookList) snapshot() []BeforeSaveHook {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hooks[:len(l.hooks):len(l.hooks)]
}

var _ Repository = (*TableRepository)(nil)

// New returns a repository for the table named by WithTable, or derived from
// WithTypeName when no table is given. It fails with ErrInvalidArgument when
// neither is usable.
func New(db bun.IDB, opts ...Option) (*TableRepository, error) {
	if db == nil {
		return nil, invalidArgument("database handle is nil")
	}
	o := options{primaryKey: DefaultPrimaryKey}
	for _, opt := range opts {
		opt(&o)
	}

	table := o.table
	if table == "" && o.typeName != "" {
		table = TableNameFromType(o.typeName)
		if table == "" {
			return nil, invalidArgument("cannot derive table name from type %q", o.typeName)
		}
	}
	if table == "" {
		return nil, invalidArgument("table name is required")
	}
	if !IsValidTableName(table) {
		return nil, invalidArgument("malformed table name %q", table)
	}
	if o.primaryKey == "" {
		return nil, invalidArgument("primary key column is required")
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}

	return &TableRepository{
		db:         db,
		table:      table,
		primaryKey: o.primaryKey,
		logger:     o.logger,
		cache:      o.cache,
		hooks:      &hookList{},
	}, nil
}

// WithTx returns a copy of the repository that runs on tx. The copy shares
// r's hook list, so hooks registered on either one run on both. The cache
// slot is copied.
func (r *TableRepository) WithTx(tx bun.IDB) *TableRepository {
	cp := *r
	cp.db = tx
	return &cp
}

func (r *TableRepository) DB() bun.IDB { return r.db }

func (r *TableRepository) TableName() string { return r.table }

func (r *TableRepository) PrimaryKey() string { return r.primaryKey }

func (r *TableRepository) CacheStorage() cache.Storage { return r.cache }

// SetCacheStorage stores the cache backend for embedding types. The
// repository itself never reads or writes it.
func (r *TableRepository) SetCacheStorage(storage cache.Storage) { r.cache = storage }

// OnBeforeSave registers a hook. Hooks run in registration order.
func (r *TableRepository) OnBeforeSave(hook BeforeSaveHook) {
	if hook != nil {
		r.hooks.add(hook)
	}
}

// Table returns an unfiltered select over the table. Nothing is executed
// until the caller scans it.
func (r *TableRepository) Table() *bun.SelectQuery {
	return r.db.NewSelect().Table(r.table)
}

func (r *TableRepository) FindAll() *bun.SelectQuery {
	return r.Table()
}

// FindBy narrows FindAll with one equality term per condition column.
//
// SQLite reads an unknown double-quoted identifier as a string literal, so a
// misspelled column there matches nothing instead of failing.
func (r *TableRepository) FindBy(cond types.Condition) *bun.SelectQuery {
	return applyCondition(r.FindAll(), cond)
}

// GetAllActive selects the rows whose flag column equals 1.
func (r *TableRepository) GetAllActive(flag string) *bun.SelectQuery {
	if flag == "" {
		flag = DefaultActiveFlag
	}
	return r.FindAll().Where("? = ?", bun.Ident(flag), 1)
}

func (r *TableRepository) Get(ctx context.Context, id interface{}) (types.Row, bool, error) {
	return r.GetOneBy(ctx, types.Condition{r.primaryKey: id})
}

// Find is an alias of Get.
func (r *TableRepository) Find(ctx context.Context, id interface{}) (types.Row, bool, error) {
	return r.Get(ctx, id)
}

// GetOneBy returns the first row matching cond. Which row is first is up to
// the store when several match. On SQLite a misspelled condition column is
// reported as not found, see FindBy.
func (r *TableRepository) GetOneBy(ctx context.Context, cond types.Condition) (types.Row, bool, error) {
	return r.scanOne(ctx, r.FindBy(cond).Limit(1))
}

func (r *TableRepository) GetAllAsArray(ctx context.Context, value, key string) (types.Pairs, error) {
	return r.GetAllAsArrayBy(ctx, nil, value, key)
}

// GetAllAsArrayBy projects the matching rows to key => value pairs ordered by
// value ascending. value defaults to "title" and key to "id". A key seen twice
// keeps its first position and takes the later value.
func (r *TableRepository) GetAllAsArrayBy(ctx context.Context, cond types.Condition, value, key string) (types.Pairs, error) {
	if value == "" {
		value = DefaultValueColumn
	}
	if key == "" {
		key = DefaultPrimaryKey
	}

	var rows []map[string]interface{}
	err := r.FindBy(cond).
		Column(key, value).
		OrderExpr("? ASC", bun.Ident(value)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	pairs := make(types.Pairs, 0, len(rows))
	index := make(map[interface{}]int, len(rows))
	for _, row := range rows {
		k, v := normalize(row[key]), normalize(row[value])
		if !isHashable(k) {
			return nil, fmt.Errorf("column %s of %s holds unhashable %T", key, r.table, k)
		}
		if i, ok := index[k]; ok {
			pairs[i].Value = v
			continue
		}
		index[k] = len(pairs)
		pairs = append(pairs, types.Pair{Key: k, Value: v})
	}
	return pairs, nil
}

func (r *TableRepository) Count(ctx context.Context, cond types.Condition) (int, error) {
	return r.FindBy(cond).Count(ctx)
}

func (r *TableRepository) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[types.Row], error) {
	if pageRequest == nil {
		pageRequest = types.NewPageRequestWithCondition(1, 0, nil)
	}
	query := r.FindBy(pageRequest.GetCondition())
	pagination := types.NewDefaultPagination[types.Row](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	var rows []map[string]interface{}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = make([]types.Row, len(rows))
	for i, row := range rows {
		pagination.Items[i] = normalizeRow(row)
	}
	return pagination, nil
}

// IsPersistent reports whether values carries the key column and a row with
// that key already exists. key defaults to the primary key.
func (r *TableRepository) IsPersistent(ctx context.Context, values types.Row, key string) (bool, error) {
	if key == "" {
		key = r.primaryKey
	}
	id, ok := values[key]
	if !ok || id == nil {
		return false, nil
	}
	_, found, err := r.GetOneBy(ctx, types.Condition{key: id})
	return found, err
}

// Save inserts values, or updates the row whose key column matches. It
// returns the row as stored. Hooks see a copy of values before any write.
//
// The existence check and the write are separate statements; run Save on a
// repository from WithTx when that matters. A unique constraint violation
// is returned as *DuplicateEntryError.
func (r *TableRepository) Save(ctx context.Context, values types.Row, key string) (types.Row, error) {
	if key == "" {
		key = r.primaryKey
	}
	for _, hook := range r.hooks.snapshot() {
		hook(ctx, values.Clone())
	}

	persistent, err := r.IsPersistent(ctx, values, key)
	if err != nil {
		return nil, err
	}
	if persistent {
		return r.update(ctx, values, key)
	}
	return r.insert(ctx, values, key)
}

// Delete removes the row with the given primary key and returns the number
// of rows affected.
func (r *TableRepository) Delete(ctx context.Context, id interface{}) (int64, error) {
	res, err := r.db.NewDelete().
		Table(r.table).
		Where("? = ?", bun.Ident(r.primaryKey), id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TableRepository) update(ctx context.Context, values types.Row, key string) (types.Row, error) {
	id := values[key]
	columns := map[string]interface{}(values.Without(key))
	if len(columns) > 0 {
		_, err := r.db.NewUpdate().
			Model(&columns).
			Table(r.table).
			Where("? = ?", bun.Ident(key), id).
			Exec(ctx)
		if err != nil {
			return nil, r.translateError(err)
		}
		r.logger.Debug("row updated", "table", r.table, "key", key, "id", id)
	}
	return r.refetch(ctx, key, id, values)
}

func (r *TableRepository) insert(ctx context.Context, values types.Row, key string) (types.Row, error) {
	columns := map[string]interface{}(values.Clone())
	if columns == nil {
		columns = map[string]interface{}{}
	}
	if v, ok := columns[key]; ok && v == nil {
		delete(columns, key)
	}

	query := r.db.NewInsert().Model(&columns).Table(r.table)
	if r.db.Dialect().Features().Has(feature.InsertReturning) {
		stored := map[string]interface{}{}
		if _, err := query.Returning("*").Exec(ctx, &stored); err != nil {
			return nil, r.translateError(err)
		}
		r.logger.Debug("row inserted", "table", r.table)
		return normalizeRow(stored), nil
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return nil, r.translateError(err)
	}
	r.logger.Debug("row inserted", "table", r.table)

	if id, ok := columns[key]; ok {
		return r.refetch(ctx, key, id, values)
	}
	// the generated id belongs to the primary key, whatever key Save matched on
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return r.refetch(ctx, r.primaryKey, id, values)
	}
	return values.Clone(), nil
}

// refetch reads the row back, falling back to the written values if it is
// no longer visible.
func (r *TableRepository) refetch(ctx context.Context, key string, id interface{}, values types.Row) (types.Row, error) {
	row, found, err := r.GetOneBy(ctx, types.Condition{key: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return values.Clone(), nil
	}
	return row, nil
}

func (r *TableRepository) translateError(err error) error {
	info := database.ClassifyError(err)
	if info == nil || info.Kind != database.DuplicateKeyErr {
		return err
	}
	r.logger.Warn("duplicate entry", "table", r.table, "code", info.Code, "error", info.Message)
	return &DuplicateEntryError{
		Table:   r.table,
		Message: info.Message,
		Code:    info.Code,
		Err:     err,
	}
}

func (r *TableRepository) scanOne(ctx context.Context, query *bun.SelectQuery) (types.Row, bool, error) {
	row := map[string]interface{}{}
	err := query.Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(row) == 0 {
		return nil, false, nil
	}
	return normalizeRow(row), true, nil
}

// applyCondition adds one WHERE term per column in sorted order. nil becomes
// IS NULL and a slice becomes IN.
func applyCondition(query *bun.SelectQuery, cond types.Condition) *bun.SelectQuery {
	for _, column := range cond.Columns() {
		value := cond[column]
		switch {
		case value == nil:
			query = query.Where("? IS NULL", bun.Ident(column))
		case isList(value):
			query = query.Where("? IN (?)", bun.Ident(column), bun.In(value))
		default:
			query = query.Where("? = ?", bun.Ident(column), value)
		}
	}
	return query
}

func isList(v interface{}) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func isHashable(v interface{}) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

// normalize turns driver byte slices into strings so values compare and
// print like the text they hold.
func normalize(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func normalizeRow(m map[string]interface{}) types.Row {
	if m == nil {
		return nil
	}
	row := make(types.Row, len(m))
	for k, v := range m {
		row[k] = normalize(v)
	}
	return row
}
