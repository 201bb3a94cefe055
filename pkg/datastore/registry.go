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
	"fmt"
	"sort"
	"sync"
)

// Registry maps dataset names to stores. Lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	stores  map[string]DataStore
	primary string
}

func NewRegistry(primary string) *Registry {
	return &Registry{
		stores:  make(map[string]DataStore),
		primary: primary,
	}
}

func (r *Registry) Register(ds DataStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[ds.Name()]; ok {
		return fmt.Errorf("Registry.Register: dataset %v is already registered", ds.Name())
	}
	r.stores[ds.Name()] = ds
	return nil
}

// Get resolves name to a store, an empty name resolves to the primary dataset.
func (r *Registry) Get(name string) (DataStore, error) {
	if name == "" {
		name = r.primary
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.stores[name]
	if !ok {
		return nil, fmt.Errorf("Registry.Get: dataset %q: %w", name, ErrUnknownDataset)
	}
	return ds, nil
}

// GetWriter resolves name to a store that accepts bulk inserts.
func (r *Registry) GetWriter(name string) (Writer, error) {
	ds, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	w, ok := ds.(Writer)
	if !ok {
		return nil, fmt.Errorf("Registry.GetWriter: dataset %q: %w", ds.Name(), ErrReadOnlyDataset)
	}
	return w, nil
}

func (r *Registry) Primary() string {
	return r.primary
}

// Names returns the registered dataset names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
