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

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

func newRegistry(t *testing.T) (*services.SessionRegistry, *test.FakeEditService, *test.DraftRecorder) {
	t.Helper()
	fake := test.NewFakeEditService(t)
	cfg := test.NewConfig(t, fake.URL())
	drafts := test.NewDraftRecorder()
	registry := services.NewSessionRegistry(
		cloud.NewEditServiceClient(cfg.Remote, nil),
		services.NewDraftAutoSaveGuard(drafts),
		cfg.Storage.ArtifactDir,
		cfg.Drafts.TeardownTimeout(),
	)
	return registry, fake, drafts
}

func TestRegistryOpenPreUploads(t *testing.T) {
	registry, fake, _ := newRegistry(t)
	uri := test.WriteMedia(t, t.TempDir(), "source.mp4", test.SampleVideo)

	s, err := registry.Open(ctx, uri)
	require.NoError(t, err)
	s.WaitIdle()

	got, ok := registry.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, uri, s.Snapshot().UploadedURI)
	assert.Equal(t, []string{"source.mp4"}, fake.Uploaded())

	require.NoError(t, s.Dispatch(ctx, "trim"))
	assert.Equal(t, int32(1), fake.UploadCalls.Load(), "dispatch reuses the pre-upload")
}

func TestRegistryOpenRejectsBlankURI(t *testing.T) {
	registry, _, _ := newRegistry(t)
	_, err := registry.Open(ctx, " ")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, registry.Len())
}

func TestRegistryCloseSavesDrafts(t *testing.T) {
	registry, _, drafts := newRegistry(t)
	a, err := registry.Open(ctx, test.WriteMedia(t, t.TempDir(), "a.mp4", test.SampleVideo))
	require.NoError(t, err)
	b, err := registry.Open(ctx, test.WriteMedia(t, t.TempDir(), "b.mp4", test.SampleVideo))
	require.NoError(t, err)
	a.WaitIdle()
	b.WaitIdle()

	require.NoError(t, a.Dispatch(ctx, "trim"))
	require.NoError(t, b.Dispatch(ctx, "trim"))

	require.NoError(t, registry.Close(ctx, a.ID()))
	_, ok := registry.Get(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, drafts.Count())
	require.NoError(t, registry.Close(ctx, a.ID()))

	require.NoError(t, registry.CloseAll(ctx))
	assert.Equal(t, 2, drafts.Count())
	assert.Zero(t, registry.Len())
}
