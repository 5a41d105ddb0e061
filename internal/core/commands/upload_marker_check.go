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
	"log/slog"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
)

// UploadMarkerCheck short-circuits the upload when the input URI equals the
// last URI uploaded in this session. The marker is read through a function
// so the owner keeps control of its locking.
type UploadMarkerCheck struct {
	cor.BaseCommand
	marker func() string
}

// NewUploadMarkerCheck is the constructor for the UploadMarkerCheck command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - marker: Returns the URI recorded by the last successful upload.
//
// Outputs:
//   - *UploadMarkerCheck: A pointer to the newly instantiated command.
func NewUploadMarkerCheck(name string, marker func() string) *UploadMarkerCheck {
	return &UploadMarkerCheck{BaseCommand: *cor.NewBaseCommand(name), marker: marker}
}

func (c *UploadMarkerCheck) Execute(context cor.Context) {
	uri, _ := cor.Value[string](context, c.GetInputParam())
	if last := c.marker(); last != "" && last == uri {
		slog.DebugContext(context.GetContext(), "media already uploaded in this session", "uri", uri)
		context.Add(ParamUploaded, true)
	}
	c.Succeed(context)
	context.Add(c.GetOutputParam(), uri)
}
