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
package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

const activeKey = "@active_persona"

func newActive(store *test.MemoryStore) (*services.ActivePersonaManager, *services.PersonaRepository) {
	repo := services.NewPersonaRepository(store, personasKey, false)
	return services.NewActivePersonaManager(store, activeKey, repo), repo
}

func TestApplyPresetSurvivesRestart(t *testing.T) {
	store := test.NewMemoryStore()
	manager, _ := newActive(store)

	state, err := manager.ApplyPreset(ctx, "builtin_humorous_barrage")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.SourceBuiltin, state.Source)
	assert.Contains(t, state.Instruction, "节奏fast")
	assert.Contains(t, state.Instruction, "跳剪开启")

	restarted, _ := newActive(store)
	restored := restarted.Restore(ctx)
	require.NotNil(t, restored)
	assert.Equal(t, *state, *restored)
	assert.Equal(t, *state, *restarted.Current())
}

func TestApplyUserPersonaFallsBackToDescription(t *testing.T) {
	store := test.NewMemoryStore()
	manager, repo := newActive(store)
	p := newPersona(t, "mine")
	require.NoError(t, repo.Add(ctx, p))

	state, err := manager.ApplyUserPersona(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, model.SourceUser, state.Source)
	assert.Equal(t, p.Description, state.Instruction)
}

func TestApplyUnknownLeavesStateUntouched(t *testing.T) {
	store := test.NewMemoryStore()
	manager, _ := newActive(store)
	_, err := manager.ApplyPreset(ctx, "builtin_rational_lecturer")
	require.NoError(t, err)
	writes := store.Writes

	state, err := manager.ApplyPreset(ctx, "builtin_missing")
	require.NoError(t, err)
	assert.Nil(t, state)

	state, err = manager.ApplyUserPersona(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, state)

	assert.Equal(t, writes, store.Writes)
	assert.Equal(t, "builtin_rational_lecturer", manager.Current().ID)
}

func TestApplyReplacesPreviousState(t *testing.T) {
	manager, _ := newActive(test.NewMemoryStore())
	_, err := manager.ApplyPreset(ctx, "builtin_rational_lecturer")
	require.NoError(t, err)
	_, err = manager.ApplyPreset(ctx, "builtin_travel_montage")
	require.NoError(t, err)

	assert.Equal(t, "builtin_travel_montage", manager.Current().ID)
}

func TestRestoreIgnoresCorruptState(t *testing.T) {
	store := test.NewMemoryStore()
	store.Raw(activeKey, "[]")
	manager, _ := newActive(store)
	assert.Nil(t, manager.Restore(ctx))

	store.Raw(activeKey, "garbage")
	assert.Nil(t, manager.Restore(ctx))
	assert.Nil(t, manager.Current())
}

func TestApplyFailsWhenStoreFails(t *testing.T) {
	store := test.NewMemoryStore()
	manager, _ := newActive(store)
	store.FailWrites = true

	_, err := manager.ApplyPreset(ctx, "builtin_rational_lecturer")
	assert.ErrorIs(t, err, model.ErrFileSystem)
	assert.Nil(t, manager.Current())
}

func TestClearActivePersona(t *testing.T) {
	store := test.NewMemoryStore()
	manager, _ := newActive(store)
	_, err := manager.ApplyPreset(ctx, "builtin_rational_lecturer")
	require.NoError(t, err)

	require.NoError(t, manager.Clear(ctx))
	assert.Nil(t, manager.Current())
	assert.False(t, store.Has(activeKey))
}
