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

// Package commands holds the atomic steps the upload and dispatch pipelines
// are built from. Every command reads its inputs from the shared cor.Context,
// talks to exactly one collaborator (the filesystem or the edit service) and
// records a classified model.Error on failure instead of panicking.
package commands

import (
	"context"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// Context keys shared between commands.
const (
	ParamLocalURI        = "__LOCAL_URI__"
	ParamLocalPath       = "__LOCAL_PATH__"
	ParamFileName        = "__FILE_NAME__"
	ParamUploaded        = "__UPLOADED__"
	ParamDedupHit        = "__DEDUP_HIT__"
	ParamInstruction     = "__INSTRUCTION__"
	ParamProcessResponse = "__PROCESS_RESPONSE__"
	ParamArtifactPath    = "__ARTIFACT_PATH__"
)

// FileChecker answers whether the edit service already holds a file.
type FileChecker interface {
	CheckFile(ctx context.Context, filename string) (*model.CheckFileResponse, error)
}

// VideoUploader stores a local file on the edit service.
type VideoUploader interface {
	UploadVideo(ctx context.Context, localPath string, filename string) (*model.UploadResponse, error)
}

// VideoProcessor runs one instruction against a video.
type VideoProcessor interface {
	ProcessVideo(ctx context.Context, localPath string, instruction string) (*model.ProcessResponse, error)
}

// ArtifactDownloader fetches a produced artifact to a local file.
type ArtifactDownloader interface {
	Download(ctx context.Context, outputPath string, dest string) (int64, error)
}

// EditService is everything the pipelines need from the remote side.
type EditService interface {
	FileChecker
	VideoUploader
	VideoProcessor
	ArtifactDownloader
}

// Uploader makes sure a local media URI is present on the edit service.
type Uploader interface {
	EnsureUploaded(ctx context.Context, localURI string) error
}
