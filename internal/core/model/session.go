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

package model

import (
	"path"
	"strings"
	"time"
)

const fileScheme = "file://"

type MessageKind string

const (
	MessageText    MessageKind = "text"
	MessagePreview MessageKind = "preview"
)

// Message is one entry of a session's timeline.
type Message struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	IsUser      bool        `json:"is_user"`
	Kind        MessageKind `json:"kind"`
	ArtifactURI string      `json:"artifact_uri,omitempty"`
	// Selectable marks a preview that can still be promoted to working media.
	Selectable bool      `json:"selectable,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MediaSession is the snapshot of one edit session.
type MediaSession struct {
	ID                   string    `json:"id"`
	LocalURI             string    `json:"local_uri"`
	UploadedURI          string    `json:"uploaded_uri,omitempty"`
	IsProcessing         bool      `json:"is_processing"`
	ProcessedArtifactURI string    `json:"processed_artifact_uri,omitempty"`
	LastInstruction      string    `json:"last_instruction,omitempty"`
	Messages             []Message `json:"messages"`
}

// Draft is a processed artifact kept after its session ended unresolved.
type Draft struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeFileURI returns p in file:// URI form. Relative paths are
// anchored at the root, matching how media pickers hand paths over.
func NormalizeFileURI(p string) string {
	if strings.HasPrefix(p, fileScheme) {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return fileScheme + p
}

// LocalPath strips the file:// scheme for filesystem access.
func LocalPath(uri string) string {
	return strings.TrimPrefix(uri, fileScheme)
}

// FileNameOf derives the remote filename from a local URI.
func FileNameOf(uri string) string {
	name := path.Base(LocalPath(uri))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
