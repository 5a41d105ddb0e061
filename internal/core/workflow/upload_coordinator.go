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

// Package workflow assembles the pipeline commands into the two chains a
// session runs: the deduplicated upload and the instruction dispatch.
package workflow

import (
	"context"
	"sync"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/commands"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
)

// UploadStore is the part of the edit service the upload chain talks to.
type UploadStore interface {
	commands.FileChecker
	commands.VideoUploader
}

// UploadCoordinator makes a local media file available on the edit service
// at most once per session. The chain it runs is:
//
//	local-file-check -> upload-marker-check -> remote-file-check -> media-upload
//
// The "last uploaded" marker lives in memory only, so a new coordinator
// always re-validates. Calls to EnsureUploaded are serialized; a call that
// waited behind an upload of the same file short-circuits on the marker.
type UploadCoordinator struct {
	cor.BaseCommand
	chain cor.Chain

	run    sync.Mutex
	mutex  sync.RWMutex
	marker string
}

// NewUploadCoordinator is the constructor for the UploadCoordinator.
//
// Inputs:
//   - client: The edit service client used for existence checks and uploads.
//
// Returns:
//   - A pointer to an UploadCoordinator with an empty upload marker.
func NewUploadCoordinator(client UploadStore) *UploadCoordinator {
	out := &UploadCoordinator{BaseCommand: *cor.NewBaseCommand("upload-coordinator")}
	out.initializeChain(client)
	return out
}

func (m *UploadCoordinator) initializeChain(client UploadStore) {
	out := cor.NewBaseChain(m.GetName())
	out.AddCommand(commands.NewLocalFileCheck("local-file-check"))
	out.AddCommand(commands.NewUploadMarkerCheck("upload-marker-check", m.LastUploaded))
	out.AddCommand(commands.NewRemoteFileCheck("remote-file-check", client))
	out.AddCommand(commands.NewMediaUpload("media-upload", client))
	m.chain = out
}

// Execute runs the upload chain against an existing pipeline context, which
// lets the coordinator be nested in a larger chain.
func (m *UploadCoordinator) Execute(context cor.Context) {
	m.chain.Execute(context)
	if uploaded, _ := cor.Value[bool](context, commands.ParamUploaded); uploaded && !context.HasErrors() {
		if uri, ok := cor.Value[string](context, commands.ParamLocalURI); ok {
			m.setMarker(uri)
		}
	}
}

// EnsureUploaded runs the chain for localURI and returns the first
// classified error, or nil once the service holds the file.
func (m *UploadCoordinator) EnsureUploaded(ctx context.Context, localURI string) error {
	m.run.Lock()
	defer m.run.Unlock()

	chCtx := cor.NewContextWith(ctx)
	defer chCtx.Close()
	chCtx.Add(cor.CtxIn, localURI)
	chCtx.Add(commands.ParamLocalURI, localURI)

	m.Execute(chCtx)
	if err := chCtx.FirstError(); err != nil {
		return err
	}
	return nil
}

// LastUploaded returns the URI recorded by the last successful upload.
func (m *UploadCoordinator) LastUploaded() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.marker
}

// Reset forgets the marker so the next call re-evaluates from scratch.
func (m *UploadCoordinator) Reset() {
	m.setMarker("")
}

func (m *UploadCoordinator) setMarker(uri string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.marker = uri
}
