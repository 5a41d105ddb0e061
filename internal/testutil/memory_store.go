// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package test

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// MemoryStore is an in-memory cloud.KeyValueStore. Setting FailWrites makes
// Set and Remove fail without touching the data.
type MemoryStore struct {
	mutex      sync.Mutex
	data       map[string][]byte
	Writes     int
	FailWrites bool
	FailReads  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.FailReads {
		return nil, false, ErrInjected
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.FailWrites {
		return ErrInjected
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	s.Writes++
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.FailWrites {
		return ErrInjected
	}
	delete(s.data, key)
	s.Writes++
	return nil
}

// Raw stores value under key directly, e.g. to plant corrupt JSON.
func (s *MemoryStore) Raw(key string, value string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[key] = []byte(value)
}

// Has reports whether key is present.
func (s *MemoryStore) Has(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.data[key]
	return ok
}
