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
package cloud_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

func openStore(t *testing.T, path string) *cloud.SQLiteStore {
	t.Helper()
	store, err := cloud.OpenSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("one")))
	require.NoError(t, store.Set(ctx, "k", []byte("two")))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(v))

	require.NoError(t, store.Remove(ctx, "k"))
	require.NoError(t, store.Remove(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "clip.db")

	first, err := cloud.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "@active_persona", []byte(`{"id":"x"}`)))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	v, ok, err := second.Get(ctx, "@active_persona")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"x"}`, string(v))
}

func TestLocalDraftStoreCopiesAndIndexes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := model.LocalPath(test.WriteMedia(t, dir, "temp_video_1.mp4", test.SampleVideo))
	kv := test.NewMemoryStore()
	drafts := cloud.NewLocalDraftStore(filepath.Join(dir, "drafts"), kv, "draft_videos")

	d, err := drafts.SaveDraft(ctx, "Draft_2026-01-02_10:11:12", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "drafts", "Draft_2026-01-02_10_11_12_"+d.ID+".mp4"), d.Path)
	assert.Equal(t, "Draft_2026-01-02_10:11:12", d.Name)

	content, err := os.ReadFile(d.Path)
	require.NoError(t, err)
	assert.Equal(t, test.SampleVideo, content)

	listed, err := drafts.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, d.ID, listed[0].ID)
	assert.True(t, kv.Has("draft_videos"))
}

func TestLocalDraftStoreSameNameKeepsBothDrafts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := model.LocalPath(test.WriteMedia(t, dir, "temp_video_1.mp4", []byte("FIRST-ARTIFACT")))
	second := model.LocalPath(test.WriteMedia(t, dir, "temp_video_2.mp4", []byte("SECOND-ARTIFACT")))
	drafts := cloud.NewLocalDraftStore(filepath.Join(dir, "drafts"), test.NewMemoryStore(), "draft_videos")

	a, err := drafts.SaveDraft(ctx, "Draft_2026-01-02_10-11-12", first)
	require.NoError(t, err)
	b, err := drafts.SaveDraft(ctx, "Draft_2026-01-02_10-11-12", second)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)

	listed, err := drafts.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	content, err := os.ReadFile(listed[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "FIRST-ARTIFACT", string(content))
	content, err = os.ReadFile(listed[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "SECOND-ARTIFACT", string(content))
}

func TestLocalDraftStoreMissingSource(t *testing.T) {
	drafts := cloud.NewLocalDraftStore(t.TempDir(), test.NewMemoryStore(), "draft_videos")
	_, err := drafts.SaveDraft(context.Background(), "d", filepath.Join(t.TempDir(), "gone.mp4"))
	assert.ErrorIs(t, err, model.ErrFileSystem)
}

func TestLocalDraftStoreIndexFailure(t *testing.T) {
	dir := t.TempDir()
	kv := test.NewMemoryStore()
	kv.FailWrites = true
	drafts := cloud.NewLocalDraftStore(dir, kv, "draft_videos")
	src := model.LocalPath(test.WriteMedia(t, t.TempDir(), "a.mp4", test.SampleVideo))

	_, err := drafts.SaveDraft(context.Background(), "d", src)
	assert.ErrorIs(t, err, model.ErrFileSystem)
}

func TestGCSObjectURI(t *testing.T) {
	o := cloud.GCSObject{Bucket: "drafts-bucket", Name: "drafts/a.mp4"}
	assert.Equal(t, "gs://drafts-bucket/drafts/a.mp4", o.URI())
}

func TestGCSDraftStoreSaveAndList(t *testing.T) {
	ctx := context.Background()
	fake := test.NewFakeGCS(t)
	drafts := cloud.NewGCSDraftStore(fake.Client(t), "drafts-bucket", "/drafts/")
	dir := t.TempDir()
	first := model.LocalPath(test.WriteMedia(t, dir, "a.mp4", []byte("FIRST-ARTIFACT")))
	second := model.LocalPath(test.WriteMedia(t, dir, "b.mp4", []byte("SECOND-ARTIFACT")))

	a, err := drafts.SaveDraft(ctx, "Draft_2026-01-02_10-11-12", first)
	require.NoError(t, err)
	b, err := drafts.SaveDraft(ctx, "Draft_2026-01-02_10-11-12", second)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, "gs://drafts-bucket/drafts/Draft_2026-01-02_10-11-12_"+a.ID+".mp4", a.Path)

	content, ok := fake.Content("drafts-bucket", "drafts/Draft_2026-01-02_10-11-12_"+a.ID+".mp4")
	require.True(t, ok)
	assert.Equal(t, "FIRST-ARTIFACT", string(content))

	listed, err := drafts.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	byID := map[string]model.Draft{listed[0].ID: listed[0], listed[1].ID: listed[1]}
	require.Contains(t, byID, a.ID)
	require.Contains(t, byID, b.ID)
	assert.Equal(t, "Draft_2026-01-02_10-11-12", byID[a.ID].Name)
	assert.Equal(t, b.Path, byID[b.ID].Path)
	assert.False(t, byID[a.ID].CreatedAt.IsZero())
}

func TestGCSDraftStoreMissingSource(t *testing.T) {
	fake := test.NewFakeGCS(t)
	drafts := cloud.NewGCSDraftStore(fake.Client(t), "drafts-bucket", "")
	_, err := drafts.SaveDraft(context.Background(), "d", filepath.Join(t.TempDir(), "gone.mp4"))
	assert.ErrorIs(t, err, model.ErrFileSystem)
}
