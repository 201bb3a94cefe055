/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	VALUE_DATASET         = "value"
	INDEXED_VALUE_DATASET = "indexed_value"
)

// rows per INSERT statement, kept well below the sqlite bound variable limit
const insertChunkSize = 1000

// ValueEntry is a value stored without an index on the value column.
type ValueEntry struct {
	ID    uint    `gorm:"primaryKey"`
	Value float64 `gorm:"not null"`
}

// IndexedValueEntry is a value stored with a b-tree index on the value column.
type IndexedValueEntry struct {
	ID    uint    `gorm:"primaryKey"`
	Value float64 `gorm:"not null;index"`
}

type Sqlite struct {
	db     *gorm.DB
	logger *gormLogger
}

// OpenSqlite opens (creating when needed) the sqlite file at dbPath and
// migrates both value tables.
func OpenSqlite(dbPath string, slowQueryThreshold time.Duration) (*Sqlite, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		err := os.MkdirAll(dir, 0764)
		if err != nil {
			log.Errorf("OpenSqlite: failed to create directory %v, err: %v", dir, err)
			return nil, err
		}
	}

	gormLog := newGormLogrusLogger(log.StandardLogger().WithField("component", "gorm"), slowQueryThreshold)
	dbConnection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		log.Errorf("OpenSqlite: error in opening sqlite connection, err: %+v", err)
		return nil, err
	}

	err = dbConnection.AutoMigrate(&ValueEntry{})
	if err != nil {
		return nil, err
	}
	err = dbConnection.AutoMigrate(&IndexedValueEntry{})
	if err != nil {
		return nil, err
	}

	return &Sqlite{db: dbConnection, logger: gormLog}, nil
}

func (p *Sqlite) CloseDb() {
	sqlDB, err := p.db.DB()
	if err != nil {
		log.Errorf("CloseDb: Error occurred while closing a DB connection, err: %v", err)
		return
	}
	err = sqlDB.Close()
	if err != nil {
		log.Errorf("CloseDb: failed to close sqlite, err: %v", err)
	}
}

// Stores returns the plain and the indexed dataset. queryTimeout bounds every
// single query, 0 leaves them unbounded.
func (p *Sqlite) Stores(queryTimeout time.Duration) []*SqliteStore {
	return []*SqliteStore{
		{
			name:    VALUE_DATASET,
			indexed: false,
			db:      p.session(VALUE_DATASET),
			model:   &ValueEntry{},
			timeout: queryTimeout,
			newRows: func(values []float64) interface{} {
				rows := make([]ValueEntry, len(values))
				for i, v := range values {
					rows[i].Value = v
				}
				return &rows
			},
		},
		{
			name:    INDEXED_VALUE_DATASET,
			indexed: true,
			db:      p.session(INDEXED_VALUE_DATASET),
			model:   &IndexedValueEntry{},
			timeout: queryTimeout,
			newRows: func(values []float64) interface{} {
				rows := make([]IndexedValueEntry, len(values))
				for i, v := range values {
					rows[i].Value = v
				}
				return &rows
			},
		},
	}
}

// session shares the connection pool but logs under the dataset's name.
func (p *Sqlite) session(dataset string) *gorm.DB {
	return p.db.Session(&gorm.Session{Logger: p.logger.forDataset(dataset)})
}

// SqliteStore is one value table of the sqlite database.
type SqliteStore struct {
	name    string
	indexed bool
	db      *gorm.DB
	model   interface{}
	timeout time.Duration
	newRows func(values []float64) interface{}
}

func (s *SqliteStore) Name() string {
	return s.name
}

func (s *SqliteStore) Indexed() bool {
	return s.indexed
}

func (s *SqliteStore) query(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	return s.db.WithContext(ctx).Model(s.model), cancel
}

func (s *SqliteStore) Count(ctx context.Context) (uint64, error) {
	q, cancel := s.query(ctx)
	defer cancel()

	var count int64
	err := q.Count(&count).Error
	if err != nil {
		return 0, unavailable("Count", s.name, err)
	}
	return uint64(count), nil
}

func (s *SqliteStore) CountAbove(ctx context.Context, threshold float64) (uint64, error) {
	q, cancel := s.query(ctx)
	defer cancel()

	var count int64
	err := q.Where("value > ?", threshold).Count(&count).Error
	if err != nil {
		return 0, unavailable("CountAbove", s.name, err)
	}
	return uint64(count), nil
}

func (s *SqliteStore) Min(ctx context.Context) (float64, error) {
	return s.aggregate(ctx, "Min", "MIN(value)")
}

func (s *SqliteStore) Max(ctx context.Context) (float64, error) {
	return s.aggregate(ctx, "Max", "MAX(value)")
}

func (s *SqliteStore) aggregate(ctx context.Context, op string, expr string) (float64, error) {
	q, cancel := s.query(ctx)
	defer cancel()

	var v sql.NullFloat64
	err := q.Select(expr).Row().Scan(&v)
	if err != nil {
		return 0, unavailable(op, s.name, err)
	}
	if !v.Valid {
		return 0, fmt.Errorf("SqliteStore.%v: dataset %v: %w", op, s.name, ErrEmptyDataset)
	}
	return v.Float64, nil
}

func (s *SqliteStore) ValueAtRank(ctx context.Context, offset uint64) (float64, error) {
	q, cancel := s.query(ctx)
	defer cancel()

	var values []float64
	err := q.Order("value ASC").Offset(int(offset)).Limit(1).Pluck("value", &values).Error
	if err != nil {
		return 0, unavailable("ValueAtRank", s.name, err)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("SqliteStore.ValueAtRank: offset %v on dataset %v: %w", offset, s.name, ErrRankOutOfRange)
	}
	return values[0], nil
}

func (s *SqliteStore) Summarize(ctx context.Context, threshold float64) (Summary, error) {
	q, cancel := s.query(ctx)
	defer cancel()

	var count, countAbove int64
	var minVal, maxVal sql.NullFloat64
	err := q.Select("COUNT(id), MIN(value), MAX(value), COALESCE(SUM(CASE WHEN value > ? THEN 1 ELSE 0 END), 0)", threshold).
		Row().Scan(&count, &minVal, &maxVal, &countAbove)
	if err != nil {
		return Summary{}, unavailable("Summarize", s.name, err)
	}
	if count == 0 || !minVal.Valid || !maxVal.Valid {
		return Summary{}, fmt.Errorf("SqliteStore.Summarize: dataset %v: %w", s.name, ErrEmptyDataset)
	}
	return Summary{
		Count:      uint64(count),
		Min:        minVal.Float64,
		Max:        maxVal.Float64,
		CountAbove: uint64(countAbove),
	}, nil
}

// BulkInsert writes all values in a single transaction.
func (s *SqliteStore) BulkInsert(ctx context.Context, values []float64) error {
	if len(values) == 0 {
		return nil
	}
	if err := validateValues(values); err != nil {
		return err
	}
	rows := s.newRows(values)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, insertChunkSize).Error
	})
	if err != nil {
		log.Errorf("SqliteStore.BulkInsert: failed to insert %v values into %v, err: %v", len(values), s.name, err)
		return unavailable("BulkInsert", s.name, err)
	}
	return nil
}

// Truncate drops every value in the dataset.
func (s *SqliteStore) Truncate(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(s.model).Error
	if err != nil {
		return unavailable("Truncate", s.name, err)
	}
	return nil
}
