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

// Package test provides the shared fixtures of the test suites: configuration
// pointed at temporary directories, an in-memory key-value store, a fake
// edit service and a recording draft store.
package test

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at the test configuration files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads the test configuration once and caches it.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}

// NewConfig returns a copy of the test configuration whose storage lives in
// a per-test temporary directory and whose remote points at baseURL.
func NewConfig(t *testing.T, baseURL string) *cloud.Config {
	t.Helper()
	base := *GetConfig()
	dir := t.TempDir()
	base.Remote.BaseURL = baseURL
	base.Storage.DatabasePath = ":memory:"
	base.Storage.ArtifactDir = filepath.Join(dir, "artifacts")
	base.Storage.DraftDir = filepath.Join(dir, "drafts")
	base.Drafts.Backend = cloud.DraftBackendLocal
	return &base
}

// SampleVideo is the head of an MP4 file followed by a few payload bytes.
var SampleVideo = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2',
	0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x00, 0x08, 'f', 'r', 'e', 'e',
}

// WriteMedia writes content to dir/name and returns its file:// URI.
func WriteMedia(t *testing.T, dir string, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write media fixture: %v", err)
	}
	return model.NormalizeFileURI(path)
}
