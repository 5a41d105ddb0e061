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
// Package cloud_test covers configuration loading, the persistent stores and
// the edit service client.
package cloud_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfigDefaults(t *testing.T) {
	c := cloud.NewConfig()

	assert.Equal(t, cloud.DefaultListenAddr, c.Application.ListenAddr)
	assert.Equal(t, "user_personas", c.Storage.Keys.Personas)
	assert.Equal(t, "@active_persona", c.Storage.Keys.ActivePersona)
	assert.Equal(t, "draft_videos", c.Storage.Keys.Drafts)
	assert.Equal(t, "/check-file", c.Remote.CheckFilePath)
	assert.Equal(t, "/upload-video", c.Remote.UploadPath)
	assert.Equal(t, "/process-video", c.Remote.ProcessPath)
	assert.Equal(t, cloud.DraftBackendLocal, c.Drafts.Backend)
	assert.Equal(t, 120*time.Second, c.Remote.Timeout())
	assert.Equal(t, 10*time.Second, c.Drafts.TeardownTimeout())
	assert.False(t, c.Personas.UniqueIDs)
}

func TestLoadConfigLayersRuntimeFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.toml"), `
[remote]
base_url = "http://base:8000"
timeout_in_seconds = 30

[personas]
unique_ids = true
`)
	writeFile(t, filepath.Join(dir, ".env.dev.toml"), `
[remote]
base_url = "http://dev:9000"
`)
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "dev")

	c := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(c))

	assert.Equal(t, "http://dev:9000", c.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, c.Remote.Timeout())
	assert.True(t, c.Personas.UniqueIDs)
	assert.Equal(t, "/upload-video", c.Remote.UploadPath)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.toml"), "[remote\nbase_url=")
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "none")

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	writeFile(t, env, "CLIP_TEST_ONE=from-file\nCLIP_TEST_TWO=from-file\n")
	t.Setenv("CLIP_TEST_ONE", "preset")
	t.Setenv("CLIP_TEST_TWO", "")
	os.Unsetenv("CLIP_TEST_TWO")

	require.NoError(t, cloud.LoadDotEnv(env, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "preset", os.Getenv("CLIP_TEST_ONE"))
	assert.Equal(t, "from-file", os.Getenv("CLIP_TEST_TWO"))
}
