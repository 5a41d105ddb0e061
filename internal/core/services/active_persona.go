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
	"log/slog"
	"sync"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// ActivePersonaManager owns the single persisted "active persona" slot. Each
// apply replaces the previous state completely.
//
// Lookups that find nothing return a nil state and a nil error and leave the
// slot untouched. Errors are reserved for a failing store.
type ActivePersonaManager struct {
	store    cloud.KeyValueStore
	key      string
	personas *PersonaRepository

	mutex   sync.RWMutex
	current *model.ActivePersonaState
}

// NewActivePersonaManager creates a manager for the slot stored under key.
// Call Restore to load a previously persisted state.
//
// Inputs:
//   - store: The key value store holding the slot.
//   - key: The key of the slot.
//   - personas: Resolves user persona ids on apply.
func NewActivePersonaManager(store cloud.KeyValueStore, key string, personas *PersonaRepository) *ActivePersonaManager {
	return &ActivePersonaManager{store: store, key: key, personas: personas}
}

// Restore loads the persisted state into memory. Missing, corrupt or
// unreadable data all mean "no active persona".
func (m *ActivePersonaManager) Restore(ctx context.Context) *model.ActivePersonaState {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.current = nil
	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		slog.WarnContext(ctx, "failed to read active persona", "key", m.key, "error", err)
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	state := &model.ActivePersonaState{}
	if err := json.Unmarshal(raw, state); err != nil || state.ID == "" {
		slog.WarnContext(ctx, "active persona is corrupt, ignoring", "key", m.key, "error", err)
		return nil
	}
	m.current = state
	return copyState(state)
}

// Current returns a copy of the active state, or nil.
func (m *ActivePersonaManager) Current() *model.ActivePersonaState {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return copyState(m.current)
}

// ApplyPreset activates a catalog preset with its compiled instruction.
func (m *ActivePersonaManager) ApplyPreset(ctx context.Context, presetID string) (*model.ActivePersonaState, error) {
	preset, ok := model.PresetByID(presetID)
	if !ok {
		slog.InfoContext(ctx, "preset not found, active persona unchanged", "preset", presetID)
		return nil, nil
	}
	return m.activate(ctx, &model.ActivePersonaState{
		ID:          preset.ID,
		Name:        preset.Name,
		Source:      model.SourceBuiltin,
		Instruction: BuildPresetInstruction(preset),
	})
}

// ApplyUserPersona activates a stored persona. Its instruction falls back to
// the description when empty.
func (m *ActivePersonaManager) ApplyUserPersona(ctx context.Context, personaID string) (*model.ActivePersonaState, error) {
	persona, err := m.personas.Get(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if persona == nil {
		slog.InfoContext(ctx, "persona not found, active persona unchanged", "persona", personaID)
		return nil, nil
	}
	return m.activate(ctx, &model.ActivePersonaState{
		ID:          persona.ID,
		Name:        persona.Name,
		Source:      model.SourceUser,
		Instruction: persona.EffectiveInstruction(),
	})
}

// Clear drops the in-memory state and the persisted slot.
func (m *ActivePersonaManager) Clear(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.store.Remove(ctx, m.key); err != nil {
		return model.FileSystemError("active_persona.clear", "failed to clear active persona", err)
	}
	m.current = nil
	return nil
}

// activate persists state first so memory never holds a state the store
// does not.
func (m *ActivePersonaManager) activate(ctx context.Context, state *model.ActivePersonaState) (*model.ActivePersonaState, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, model.FileSystemError("active_persona.apply", "failed to encode active persona", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err := m.store.Set(ctx, m.key, raw); err != nil {
		return nil, model.FileSystemError("active_persona.apply", "failed to save active persona", err)
	}
	m.current = state
	slog.InfoContext(ctx, "active persona applied", "id", state.ID, "source", state.Source)
	return copyState(state), nil
}

func copyState(s *model.ActivePersonaState) *model.ActivePersonaState {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
