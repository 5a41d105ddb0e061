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

package workflow_test

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/workflow"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

func newCoordinator(t *testing.T) (*workflow.UploadCoordinator, *test.FakeEditService) {
	fake := test.NewFakeEditService(t)
	cfg := test.NewConfig(t, fake.URL())
	client := cloud.NewEditServiceClient(cfg.Remote, nil)
	return workflow.NewUploadCoordinator(client), fake
}

func TestEnsureUploadedIsIdempotent(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "upload-idempotent-test")
	defer span.End()

	coordinator, fake := newCoordinator(t)
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	require.NoError(t, coordinator.EnsureUploaded(traceCtx, uri))
	require.NoError(t, coordinator.EnsureUploaded(traceCtx, uri))

	assert.Equal(t, int32(1), fake.UploadCalls.Load())
	assert.Equal(t, int32(1), fake.CheckCalls.Load(), "second call must short-circuit on the marker")
	assert.Equal(t, []string{"clip.mp4"}, fake.Uploaded())
	assert.Equal(t, uri, coordinator.LastUploaded())
}

func TestEnsureUploadedSkipsUploadWhenFileExists(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	uri := test.WriteMedia(t, t.TempDir(), "known.mp4", test.SampleVideo)
	fake.MarkExisting("known.mp4")

	require.NoError(t, coordinator.EnsureUploaded(ctx, uri))

	assert.Equal(t, int32(1), fake.CheckCalls.Load())
	assert.Equal(t, int32(0), fake.UploadCalls.Load())
	assert.Equal(t, uri, coordinator.LastUploaded())
}

func TestEnsureUploadedFallsBackWhenCheckFails(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	fake.CheckFails = true
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	require.NoError(t, coordinator.EnsureUploaded(ctx, uri))
	assert.Equal(t, int32(1), fake.UploadCalls.Load())
}

func TestEnsureUploadedRejectsEmptyFile(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	uri := test.WriteMedia(t, t.TempDir(), "empty.mp4", nil)

	err := coordinator.EnsureUploaded(ctx, uri)

	assert.ErrorIs(t, err, model.ErrFileSystem)
	assert.Equal(t, int32(0), fake.CheckCalls.Load())
	assert.Equal(t, int32(0), fake.UploadCalls.Load())
	assert.Empty(t, coordinator.LastUploaded())
}

func TestEnsureUploadedRejectsMissingFile(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	uri := model.NormalizeFileURI(filepath.Join(t.TempDir(), "missing.mp4"))

	err := coordinator.EnsureUploaded(ctx, uri)

	assert.ErrorIs(t, err, model.ErrFileSystem)
	assert.Equal(t, int32(0), fake.CheckCalls.Load())
}

func TestEnsureUploadedSurfacesUploadFailure(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	fake.UploadStatus = http.StatusInternalServerError
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	err := coordinator.EnsureUploaded(ctx, uri)

	assert.ErrorIs(t, err, model.ErrNetwork)
	assert.Contains(t, model.UserMessage(err), "500")
	assert.Empty(t, coordinator.LastUploaded(), "a failed upload must not record the marker")
}

func TestResetForcesReevaluation(t *testing.T) {
	coordinator, fake := newCoordinator(t)
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	require.NoError(t, coordinator.EnsureUploaded(ctx, uri))
	coordinator.Reset()
	require.NoError(t, coordinator.EnsureUploaded(ctx, uri))

	// The second pass asks the service again, which now knows the file.
	assert.Equal(t, int32(2), fake.CheckCalls.Load())
	assert.Equal(t, int32(1), fake.UploadCalls.Load())
}
