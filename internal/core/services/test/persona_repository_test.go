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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

const personasKey = "user_personas"

func newPersona(t *testing.T, name string) model.Persona {
	t.Helper()
	p, err := services.NewUserPersona(name, name+" description", "", time.Now())
	require.NoError(t, err)
	return *p
}

func TestPersonaRoundTrip(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "persona-round-trip-test")
	defer span.End()

	repo := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, false)
	a, b := newPersona(t, "a"), newPersona(t, "b")

	require.NoError(t, repo.Add(traceCtx, a))
	require.NoError(t, repo.Add(traceCtx, b))

	all, err := repo.GetAll(traceCtx)
	require.NoError(t, err)
	assert.Equal(t, []model.Persona{a, b}, all)

	got, err := repo.Get(traceCtx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, *got)

	b.Name = "renamed"
	require.NoError(t, repo.Update(traceCtx, b))
	got, err = repo.Get(traceCtx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestPersonaDeleteIsIdempotent(t *testing.T) {
	repo := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, false)
	a, b := newPersona(t, "a"), newPersona(t, "b")
	require.NoError(t, repo.Add(ctx, a))
	require.NoError(t, repo.Add(ctx, b))

	require.NoError(t, repo.Delete(ctx, a.ID))
	require.NoError(t, repo.Delete(ctx, a.ID))
	require.NoError(t, repo.Delete(ctx, "unknown"))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Persona{b}, all)
}

func TestPersonaUpdateUnknownIsNoop(t *testing.T) {
	repo := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, false)
	a := newPersona(t, "a")
	require.NoError(t, repo.Add(ctx, a))

	require.NoError(t, repo.Update(ctx, newPersona(t, "ghost")))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Persona{a}, all)
}

func TestPersonaCorruptStorageReadsEmpty(t *testing.T) {
	store := test.NewMemoryStore()
	store.Raw(personasKey, "{not json")
	repo := services.NewPersonaRepository(store, personasKey, false)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Add(ctx, newPersona(t, "fresh")))
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPersonaMissingKeyReadsEmpty(t *testing.T) {
	repo := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, false)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	got, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPersonaWriteFailureLeavesListUnchanged(t *testing.T) {
	store := test.NewMemoryStore()
	repo := services.NewPersonaRepository(store, personasKey, false)
	a := newPersona(t, "a")
	require.NoError(t, repo.Add(ctx, a))

	store.FailWrites = true
	err := repo.Add(ctx, newPersona(t, "b"))
	assert.ErrorIs(t, err, model.ErrFileSystem)
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), model.ErrFileSystem)
	store.FailWrites = false

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Persona{a}, all)
}

func TestPersonaReadFailureIsReported(t *testing.T) {
	store := test.NewMemoryStore()
	store.FailReads = true
	repo := services.NewPersonaRepository(store, personasKey, false)

	_, err := repo.GetAll(ctx)
	assert.ErrorIs(t, err, model.ErrFileSystem)
}

func TestPersonaDuplicateIDs(t *testing.T) {
	a := newPersona(t, "a")

	lenient := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, false)
	require.NoError(t, lenient.Add(ctx, a))
	require.NoError(t, lenient.Add(ctx, a))
	all, err := lenient.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	strict := services.NewPersonaRepository(test.NewMemoryStore(), personasKey, true)
	require.NoError(t, strict.Add(ctx, a))
	assert.ErrorIs(t, strict.Add(ctx, a), model.ErrValidation)
}

func TestPersonaClearRemovesKey(t *testing.T) {
	store := test.NewMemoryStore()
	repo := services.NewPersonaRepository(store, personasKey, false)
	require.NoError(t, repo.Add(ctx, newPersona(t, "a")))

	require.NoError(t, repo.Clear(ctx))
	assert.False(t, store.Has(personasKey))
}

func TestPersonaStoredAsJSONArray(t *testing.T) {
	store := test.NewMemoryStore()
	repo := services.NewPersonaRepository(store, personasKey, false)
	a := newPersona(t, "a")
	require.NoError(t, repo.Add(ctx, a))

	raw, ok, err := store.Get(ctx, personasKey)
	require.NoError(t, err)
	require.True(t, ok)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, a.ID, decoded[0]["id"])
	assert.Equal(t, a.CreatedAt, decoded[0]["createdAt"])
	assert.Equal(t, services.CustomTag, decoded[0]["tag"])
}

func TestNewUserPersonaValidation(t *testing.T) {
	_, err := services.NewUserPersona("  ", "desc", "", time.Now())
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = services.NewUserPersona("name", "\t", "", time.Now())
	assert.ErrorIs(t, err, model.ErrValidation)

	p, err := services.NewUserPersona(" name ", " desc ", "img.png", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "name", p.Name)
	assert.Equal(t, "desc", p.Description)
	assert.Equal(t, services.NewPersonaProgress, p.Progress)
	assert.NotEmpty(t, p.ID)
}

func TestPersonaFromPreset(t *testing.T) {
	p, err := services.PersonaFromPreset("builtin_sports_highlight", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "激情体育", p.Name)
	assert.Equal(t, "运动", p.Tag)
	assert.Equal(t, services.CommunityDescription, p.Description)
	assert.Equal(t, services.DerivedPersonaProgress, p.Progress)
	assert.Contains(t, p.Instruction, "使用风格: 激情体育")

	_, err = services.PersonaFromPreset("builtin_missing", time.Now())
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPersonaFromInstruction(t *testing.T) {
	preset, _ := model.PresetByID("builtin_vlog_minimal")
	instruction := services.BuildPresetInstruction(preset)

	p := services.PersonaFromInstruction(instruction, time.Now())
	assert.Equal(t, preset.Name, p.Name)
	assert.Equal(t, instruction, p.Instruction)
	assert.LessOrEqual(t, len([]rune(p.Description)), 120)
	assert.True(t, len([]rune(instruction)) <= 120 || p.Description != instruction)

	empty := services.PersonaFromInstruction("", time.Now())
	assert.Equal(t, services.DefaultSavedPersonaName, empty.Name)
	assert.Equal(t, services.DefaultSavedDescription, empty.Description)
}
