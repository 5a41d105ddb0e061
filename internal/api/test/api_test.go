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
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/api"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
	test "github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/testutil"
)

type harness struct {
	router *gin.Engine
	fake   *test.FakeEditService
	drafts *test.DraftRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fake := test.NewFakeEditService(t)
	cfg := test.NewConfig(t, fake.URL())
	client := cloud.NewEditServiceClient(cfg.Remote, nil)
	store := test.NewMemoryStore()
	drafts := test.NewDraftRecorder()

	personas := services.NewPersonaRepository(store, cfg.Storage.Keys.Personas, cfg.Personas.UniqueIDs)
	handlers := &api.Handlers{
		Remote:   client,
		Personas: personas,
		Active:   services.NewActivePersonaManager(store, cfg.Storage.Keys.ActivePersona, personas),
		Sessions: services.NewSessionRegistry(client, services.NewDraftAutoSaveGuard(drafts), cfg.Storage.ArtifactDir, cfg.Drafts.TeardownTimeout()),
	}
	return &harness{router: api.NewRouter(handlers, "clip-persona-test"), fake: fake, drafts: drafts}
}

func (h *harness) do(t *testing.T, method string, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(model.ValidationError("op", "m")))
	assert.Equal(t, http.StatusConflict, api.StatusOf(model.StateError("op", "m")))
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusOf(model.FileSystemError("op", "m", nil)))
	assert.Equal(t, http.StatusForbidden, api.StatusOf(model.PermissionError("op", "m", nil)))
	assert.Equal(t, http.StatusBadGateway, api.StatusOf(model.NetworkError("op", "m", nil)))
	assert.Equal(t, http.StatusInternalServerError, api.StatusOf(assert.AnError))
}

func TestHealthAndPresets(t *testing.T) {
	h := newHarness(t)

	var health model.HealthResponse
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/health", nil, &health))
	assert.Equal(t, "healthy", health.Status)

	var presets []api.CatalogEntry
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/presets", nil, &presets))
	require.Len(t, presets, len(model.BuiltInPresets()))
	assert.Contains(t, presets[0].Instruction, "使用风格: "+presets[0].Name)
}

func TestPersonaLifecycle(t *testing.T) {
	h := newHarness(t)

	var errBody api.ErrorBody
	code := h.do(t, http.MethodPost, "/api/v1/personas", map[string]string{"name": " ", "description": "d"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", errBody.Kind)

	var created model.Persona
	code = h.do(t, http.MethodPost, "/api/v1/personas", map[string]string{"name": "mine", "description": "calm vlog"}, &created)
	require.Equal(t, http.StatusCreated, code)

	var community model.Persona
	code = h.do(t, http.MethodPost, "/api/v1/personas/from-preset/builtin_news_fastcut", nil, &community)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, services.CommunityDescription, community.Description)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/v1/personas/from-preset/nope", nil, nil))

	created.Name = "renamed"
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodPut, "/api/v1/personas/"+created.ID, created, nil))

	var all []model.Persona
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/personas", nil, &all))
	require.Len(t, all, 2)
	assert.Equal(t, "renamed", all[0].Name)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/v1/personas/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/v1/personas/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/v1/personas", nil, nil))

	all = nil
	h.do(t, http.MethodGet, "/api/v1/personas", nil, &all)
	assert.Empty(t, all)
}

func TestActivePersonaRoutes(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/v1/active-persona", nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPut, "/api/v1/active-persona", map[string]string{"preset_id": "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, "/api/v1/active-persona", map[string]string{}, nil))

	var state model.ActivePersonaState
	code := h.do(t, http.MethodPut, "/api/v1/active-persona", map[string]string{"preset_id": "builtin_humorous_barrage"}, &state)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, state.Instruction, "节奏fast")

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/v1/active-persona", nil, nil))
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/v1/active-persona", nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/v1/active-persona", nil, nil))
}

func TestSessionFlow(t *testing.T) {
	h := newHarness(t)
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	var session model.MediaSession
	code := h.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"local_uri": uri}, &session)
	require.Equal(t, http.StatusCreated, code)
	base := "/api/v1/sessions/" + session.ID

	code = h.do(t, http.MethodPut, "/api/v1/active-persona", map[string]string{"preset_id": "builtin_vlog_minimal"}, nil)
	require.Equal(t, http.StatusOK, code)

	code = h.do(t, http.MethodPost, base+"/apply-persona", nil, &session)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, session.ProcessedArtifactURI)
	assert.False(t, session.IsProcessing)

	var saved model.Persona
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, base+"/save-persona", nil, &saved))
	assert.Equal(t, services.CustomTag, saved.Tag)

	code = h.do(t, http.MethodPost, base+"/dispatch", map[string]string{"instruction": ""}, &session)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, h.fake.Instructions(), 2)
	assert.Equal(t, h.fake.Instructions()[0], h.fake.Instructions()[1])

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/blur", nil, nil))
	assert.Equal(t, 1, h.drafts.Count())

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/discard", nil, nil))
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, base, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, base, nil, nil))
	assert.Equal(t, 1, h.drafts.Count())
}

func TestSessionErrors(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"local_uri": ""}, nil))
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/v1/sessions/unknown/dispatch", map[string]string{"instruction": "x"}, nil))

	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)
	var session model.MediaSession
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"local_uri": uri}, &session))
	base := "/api/v1/sessions/" + session.ID

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/dispatch", map[string]string{"instruction": ""}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/apply-persona", nil, nil))

	h.fake.Artifact = []byte{}
	var errBody api.ErrorBody
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, base+"/dispatch", map[string]string{"instruction": "trim"}, &errBody))
	assert.Equal(t, "FileSystemError", errBody.Kind)

	h.fake.ProcessStatus = http.StatusInternalServerError
	assert.Equal(t, http.StatusBadGateway, h.do(t, http.MethodPost, base+"/dispatch", map[string]string{"instruction": "trim"}, nil))

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, base+"/select", map[string]string{"artifact_uri": "/no/such.mp4"}, nil))
}

func TestWriteTimeoutCoversEveryRemoteCall(t *testing.T) {
	assert.Equal(t, 4*time.Minute+30*time.Second, api.WriteTimeout(time.Minute))
}

func TestDispatchSurvivesClientDisconnect(t *testing.T) {
	h := newHarness(t)
	uri := test.WriteMedia(t, t.TempDir(), "clip.mp4", test.SampleVideo)

	var session model.MediaSession
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"local_uri": uri}, &session))
	base := "/api/v1/sessions/" + session.ID

	h.fake.ProcessGate = make(chan struct{})
	h.fake.ProcessStarted = make(chan struct{}, 1)

	reqCtx, disconnect := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, base+"/dispatch", bytes.NewReader([]byte(`{"instruction":"trim the intro"}`))).WithContext(reqCtx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.router.ServeHTTP(rec, req)
	}()

	select {
	case <-h.fake.ProcessStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch never reached the edit service")
	}
	disconnect()
	close(h.fake.ProcessGate)
	<-done

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), h.fake.DownloadCalls.Load())

	var snapshot model.MediaSession
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, base, nil, &snapshot))
	assert.NotEmpty(t, snapshot.ProcessedArtifactURI)
	assert.False(t, snapshot.IsProcessing)
}
