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

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// DraftNameLayout formats the name of an automatically saved draft.
const DraftNameLayout = "Draft_2006-01-02_15-04-05"

// DraftAutoSaveGuard saves an unresolved processed artifact as a draft when
// its session is torn down. It never reports failure to the user; a failed
// save is logged and the caller keeps the artifact for the next teardown.
type DraftAutoSaveGuard struct {
	drafts cloud.DraftStore
	now    func() time.Time
}

// NewDraftAutoSaveGuard creates a guard saving into drafts.
func NewDraftAutoSaveGuard(drafts cloud.DraftStore) *DraftAutoSaveGuard {
	return &DraftAutoSaveGuard{drafts: drafts, now: time.Now}
}

// Guard saves artifactURI as a draft and reports whether it was saved. An
// empty URI means there is nothing to protect.
func (g *DraftAutoSaveGuard) Guard(ctx context.Context, artifactURI string) bool {
	if artifactURI == "" || g.drafts == nil {
		return false
	}
	name := g.now().Format(DraftNameLayout)
	slog.InfoContext(ctx, "unsaved processed video detected, saving draft", "artifact", artifactURI, "name", name)

	draft, err := g.drafts.SaveDraft(ctx, name, model.LocalPath(artifactURI))
	if err != nil {
		slog.ErrorContext(ctx, "draft auto-save failed", "artifact", artifactURI, "error", err)
		return false
	}
	slog.InfoContext(ctx, "draft auto-saved", "draft", draft.Path)
	return true
}
