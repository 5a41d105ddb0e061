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

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// PersonaRepository persists user personas as one JSON array under a single
// key of a KeyValueStore. Every mutation reads the whole list, changes it and
// writes the whole list back.
//
// The mutex serializes read-modify-write cycles inside one process. Two
// processes sharing the same store can still lose updates.
type PersonaRepository struct {
	store     cloud.KeyValueStore // Backing key-value store.
	key       string              // Storage key of the persona array, e.g. "user_personas".
	uniqueIDs bool                // Reject Add when the id is already stored.
	mutex     sync.Mutex
}

// NewPersonaRepository creates a repository over store.
//
// Inputs:
//   - store: The key-value store holding the persona array.
//   - key: The storage key of the array.
//   - uniqueIDs: When true, Add refuses an id that is already present. When
//     false, duplicates are appended and the list keeps both entries.
//
// Outputs:
//   - *PersonaRepository: The repository.
func NewPersonaRepository(store cloud.KeyValueStore, key string, uniqueIDs bool) *PersonaRepository {
	return &PersonaRepository{store: store, key: key, uniqueIDs: uniqueIDs}
}

// GetAll returns every stored persona in insertion order.
//
// A missing key and a value that is not a valid JSON array both yield an
// empty list. Only a failing store produces an error.
func (r *PersonaRepository) GetAll(ctx context.Context) ([]model.Persona, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.load(ctx)
}

// Get returns the persona with id, or nil when it does not exist.
func (r *PersonaRepository) Get(ctx context.Context, id string) (*model.Persona, error) {
	personas, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range personas {
		if personas[i].ID == id {
			return &personas[i], nil
		}
	}
	return nil, nil
}

// Add appends persona to the stored list.
//
// Inputs:
//   - ctx: The context for the storage calls.
//   - persona: The persona to store. It is stored as given; callers create it
//     through NewUserPersona or one of the other constructors.
//
// Outputs:
//   - error: A ValidationError for a duplicate id when unique ids are
//     enforced, a FileSystemError when the store fails. On error the stored
//     list is unchanged.
func (r *PersonaRepository) Add(ctx context.Context, persona model.Persona) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	personas, err := r.load(ctx)
	if err != nil {
		return err
	}
	if r.uniqueIDs {
		for _, p := range personas {
			if p.ID == persona.ID {
				return model.ValidationError("persona.add", fmt.Sprintf("a persona with id %s already exists", persona.ID))
			}
		}
	}
	return r.save(ctx, "persona.add", append(personas, persona))
}

// Delete removes every persona with id. Deleting an unknown id succeeds and
// leaves the list unchanged.
func (r *PersonaRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	personas, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := personas[:0]
	for _, p := range personas {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return r.save(ctx, "persona.delete", kept)
}

// Update replaces the stored persona that has the same id. An unknown id is a
// no-op and still succeeds.
func (r *PersonaRepository) Update(ctx context.Context, persona model.Persona) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	personas, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range personas {
		if personas[i].ID == persona.ID {
			personas[i] = persona
		}
	}
	return r.save(ctx, "persona.update", personas)
}

// Clear removes the storage key entirely.
func (r *PersonaRepository) Clear(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.store.Remove(ctx, r.key); err != nil {
		return model.FileSystemError("persona.clear", "failed to clear personas", err)
	}
	return nil
}

func (r *PersonaRepository) load(ctx context.Context) ([]model.Persona, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, model.FileSystemError("persona.load", "failed to read personas", err)
	}
	personas := make([]model.Persona, 0)
	if !ok || len(raw) == 0 {
		return personas, nil
	}
	if err := json.Unmarshal(raw, &personas); err != nil {
		slog.WarnContext(ctx, "stored personas are corrupt, treating as empty", "key", r.key, "error", err)
		return make([]model.Persona, 0), nil
	}
	return personas, nil
}

func (r *PersonaRepository) save(ctx context.Context, op string, personas []model.Persona) error {
	raw, err := json.Marshal(personas)
	if err != nil {
		return model.FileSystemError(op, "failed to encode personas", err)
	}
	if err := r.store.Set(ctx, r.key, raw); err != nil {
		return model.FileSystemError(op, "failed to save personas", err)
	}
	return nil
}
