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

// Package cloud holds everything that talks to the outside world on behalf of
// the orchestrator: application configuration loaded from TOML, the HTTP
// client for the remote edit service, the key-value stores that persist
// personas and the active persona, and the draft stores used as the
// autosave safety net.
//
// Structs:
//   - Remote: Location, endpoints, timeout and rate limit of the edit service.
//   - Storage: Local paths for the key-value database, artifacts and drafts.
//   - StorageKeys: Key names used inside the key-value store.
//   - Drafts: Draft backend selection and the teardown budget.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import (
	"path/filepath"
	"time"
)

// Defaults applied by Config.ApplyDefaults for values left empty in TOML.
const (
	DefaultListenAddr             = ":8080"
	DefaultRemoteTimeout          = 120 * time.Second
	DefaultTeardownTimeout        = 10 * time.Second
	DefaultPersonasKey            = "user_personas"
	DefaultActivePersonaKey       = "@active_persona"
	DefaultDraftsKey              = "draft_videos"
	DefaultCheckFilePath          = "/check-file"
	DefaultUploadPath             = "/upload-video"
	DefaultProcessPath            = "/process-video"
	DefaultHealthPath             = "/health-check"
	DefaultDraftBackend           = DraftBackendLocal
	DraftBackendLocal             = "local"
	DraftBackendGCS               = "gcs"
	defaultDatabaseFile           = "clip.db"
	defaultArtifactDirectoryName  = "artifacts"
	defaultDraftDirectoryName     = "drafts"
	defaultApplicationName        = "clip-persona"
	defaultRequestsPerSecondLimit = 0
)

type Remote struct {
	BaseURL           string  `toml:"base_url"`            // Base URL of the edit service, e.g. "http://10.0.2.2:8000".
	CheckFilePath     string  `toml:"check_file_path"`     // Relative path of the existence check endpoint.
	UploadPath        string  `toml:"upload_path"`         // Relative path of the upload endpoint.
	ProcessPath       string  `toml:"process_path"`        // Relative path of the processing endpoint.
	HealthPath        string  `toml:"health_path"`         // Relative path of the health endpoint.
	TimeoutInSeconds  int     `toml:"timeout_in_seconds"`  // Per request timeout. Zero means the default.
	RequestsPerSecond float64 `toml:"requests_per_second"` // Client side rate limit. Zero disables limiting.
	Burst             int     `toml:"burst"`               // Burst size of the rate limiter.
}

// Timeout returns the effective request timeout.
func (r Remote) Timeout() time.Duration {
	if r.TimeoutInSeconds <= 0 {
		return DefaultRemoteTimeout
	}
	return time.Duration(r.TimeoutInSeconds) * time.Second
}

type StorageKeys struct {
	Personas      string `toml:"personas"`       // Key of the JSON array of user personas.
	ActivePersona string `toml:"active_persona"` // Key of the active persona slot.
	Drafts        string `toml:"drafts"`         // Key of the local draft index.
}

type Storage struct {
	DatabasePath string      `toml:"database_path"` // SQLite file backing the key-value store.
	ArtifactDir  string      `toml:"artifact_dir"`  // Directory processed artifacts are downloaded to.
	DraftDir     string      `toml:"draft_dir"`     // Directory local drafts are copied to.
	Keys         StorageKeys `toml:"keys"`
}

type Drafts struct {
	Backend                  string `toml:"backend"`                     // "local" or "gcs".
	GCSBucket                string `toml:"gcs_bucket"`                  // Bucket used by the gcs backend.
	GCSPrefix                string `toml:"gcs_prefix"`                  // Object prefix used by the gcs backend.
	GCSEndpoint              string `toml:"gcs_endpoint"`                // Optional endpoint override, used with the storage emulator.
	TeardownTimeoutInSeconds int    `toml:"teardown_timeout_in_seconds"` // Budget for teardown hooks when a session closes.
}

// TeardownTimeout bounds the draft save run when a session is torn down.
func (d Drafts) TeardownTimeout() time.Duration {
	if d.TeardownTimeoutInSeconds <= 0 {
		return DefaultTeardownTimeout
	}
	return time.Duration(d.TeardownTimeoutInSeconds) * time.Second
}

type Config struct {
	Application struct {
		Name       string `toml:"name"`        // The name of the application.
		ListenAddr string `toml:"listen_addr"` // Address the local control API binds to.
		Language   string `toml:"language"`    // UI language hint, passed through to clients.
		LogFile    string `toml:"log_file"`    // Optional file that receives a copy of the logs.
		LogLevel   string `toml:"log_level"`   // debug, info, warn or error.
	} `toml:"application"`
	Remote   Remote  `toml:"remote"`
	Storage  Storage `toml:"storage"`
	Drafts   Drafts  `toml:"drafts"`
	Personas struct {
		UniqueIDs bool `toml:"unique_ids"` // Reject adds whose id is already stored.
	} `toml:"personas"`
	Telemetry struct {
		GoogleProjectID string `toml:"google_project_id"` // Empty keeps telemetry local.
	} `toml:"telemetry"`
}

// NewConfig returns a Config populated with defaults. Values decoded from TOML
// afterwards overwrite them.
func NewConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills every empty value with its default. It is safe to call
// more than once.
func (c *Config) ApplyDefaults() {
	if c.Application.Name == "" {
		c.Application.Name = defaultApplicationName
	}
	if c.Application.ListenAddr == "" {
		c.Application.ListenAddr = DefaultListenAddr
	}
	if c.Application.LogLevel == "" {
		c.Application.LogLevel = "info"
	}

	if c.Remote.CheckFilePath == "" {
		c.Remote.CheckFilePath = DefaultCheckFilePath
	}
	if c.Remote.UploadPath == "" {
		c.Remote.UploadPath = DefaultUploadPath
	}
	if c.Remote.ProcessPath == "" {
		c.Remote.ProcessPath = DefaultProcessPath
	}
	if c.Remote.HealthPath == "" {
		c.Remote.HealthPath = DefaultHealthPath
	}
	if c.Remote.RequestsPerSecond < 0 {
		c.Remote.RequestsPerSecond = defaultRequestsPerSecondLimit
	}
	if c.Remote.Burst <= 0 {
		c.Remote.Burst = 1
	}

	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = defaultDatabaseFile
	}
	if c.Storage.ArtifactDir == "" {
		c.Storage.ArtifactDir = filepath.Join(".", defaultArtifactDirectoryName)
	}
	if c.Storage.DraftDir == "" {
		c.Storage.DraftDir = filepath.Join(".", defaultDraftDirectoryName)
	}
	if c.Storage.Keys.Personas == "" {
		c.Storage.Keys.Personas = DefaultPersonasKey
	}
	if c.Storage.Keys.ActivePersona == "" {
		c.Storage.Keys.ActivePersona = DefaultActivePersonaKey
	}
	if c.Storage.Keys.Drafts == "" {
		c.Storage.Keys.Drafts = DefaultDraftsKey
	}

	if c.Drafts.Backend == "" {
		c.Drafts.Backend = DefaultDraftBackend
	}
}
