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
	"fmt"
	"sort"
	"sync"
)

// MemStore keeps a dataset in a slice. When indexed the slice is kept in
// ascending order, which makes CountAbove and ValueAtRank cheap.
type MemStore struct {
	name    string
	indexed bool

	mu     sync.RWMutex
	values []float64
}

func NewMemStore(name string, indexed bool) *MemStore {
	return &MemStore{
		name:    name,
		indexed: indexed,
	}
}

func (m *MemStore) Name() string {
	return m.name
}

func (m *MemStore) Indexed() bool {
	return m.indexed
}

func (m *MemStore) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("Count", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.values)), nil
}

func (m *MemStore) CountAbove(ctx context.Context, threshold float64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("CountAbove", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countAboveLocked(threshold), nil
}

func (m *MemStore) countAboveLocked(threshold float64) uint64 {
	if m.indexed {
		idx := sort.Search(len(m.values), func(i int) bool {
			return m.values[i] > threshold
		})
		return uint64(len(m.values) - idx)
	}

	var count uint64
	for _, v := range m.values {
		if v > threshold {
			count++
		}
	}
	return count
}

func (m *MemStore) Min(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("Min", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.values) == 0 {
		return 0, fmt.Errorf("MemStore.Min: dataset %v: %w", m.name, ErrEmptyDataset)
	}
	minVal, _ := m.extremaLocked()
	return minVal, nil
}

func (m *MemStore) Max(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("Max", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.values) == 0 {
		return 0, fmt.Errorf("MemStore.Max: dataset %v: %w", m.name, ErrEmptyDataset)
	}
	_, maxVal := m.extremaLocked()
	return maxVal, nil
}

// extremaLocked expects a non-empty dataset.
func (m *MemStore) extremaLocked() (float64, float64) {
	if m.indexed {
		return m.values[0], m.values[len(m.values)-1]
	}
	minVal, maxVal := m.values[0], m.values[0]
	for _, v := range m.values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func (m *MemStore) ValueAtRank(ctx context.Context, offset uint64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("ValueAtRank", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset >= uint64(len(m.values)) {
		return 0, fmt.Errorf("MemStore.ValueAtRank: offset %v, count %v on dataset %v: %w",
			offset, len(m.values), m.name, ErrRankOutOfRange)
	}
	if m.indexed {
		return m.values[offset], nil
	}

	sorted := make([]float64, len(m.values))
	copy(sorted, m.values)
	sort.Float64s(sorted)
	return sorted[offset], nil
}

func (m *MemStore) Summarize(ctx context.Context, threshold float64) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, unavailable("Summarize", m.name, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.values) == 0 {
		return Summary{}, fmt.Errorf("MemStore.Summarize: dataset %v: %w", m.name, ErrEmptyDataset)
	}
	minVal, maxVal := m.extremaLocked()
	return Summary{
		Count:      uint64(len(m.values)),
		Min:        minVal,
		Max:        maxVal,
		CountAbove: m.countAboveLocked(threshold),
	}, nil
}

func (m *MemStore) BulkInsert(ctx context.Context, values []float64) error {
	if err := ctx.Err(); err != nil {
		return unavailable("BulkInsert", m.name, err)
	}
	if err := validateValues(values); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, values...)
	if m.indexed {
		sort.Float64s(m.values)
	}
	return nil
}

// Truncate drops every value in the dataset.
func (m *MemStore) Truncate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = nil
}
