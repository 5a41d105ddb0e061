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

package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// ArtifactCleanup removes a discarded artifact from local storage. Removal
// is best effort: a file that is already gone counts as removed and any
// other failure is only logged.
type ArtifactCleanup struct {
	cor.BaseCommand
}

// NewArtifactCleanup is the constructor for the ArtifactCleanup command.
func NewArtifactCleanup(name string) *ArtifactCleanup {
	return &ArtifactCleanup{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *ArtifactCleanup) Execute(context cor.Context) {
	uri, _ := cor.Value[string](context, c.GetInputParam())
	path := model.LocalPath(uri)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		if c.GetErrorCounter() != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
		}
		slog.WarnContext(context.GetContext(), "failed to remove discarded artifact", "path", path, "error", err)
		return
	}
	slog.DebugContext(context.GetContext(), "discarded artifact removed", "path", path)
	c.Succeed(context)
}
