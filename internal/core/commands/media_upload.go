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

// MediaUpload performs the multipart upload of the local file. It only runs
// when neither the session marker nor the existence check found the file.
type MediaUpload struct {
	cor.BaseCommand
	client VideoUploader
}

// NewMediaUpload is the constructor for the MediaUpload command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The edit service client receiving the multipart upload.
//
// Outputs:
//   - *MediaUpload: A pointer to the newly instantiated command.
func NewMediaUpload(name string, client VideoUploader) *MediaUpload {
	return &MediaUpload{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// IsExecutable skips the upload when an earlier step marked the media uploaded.
func (c *MediaUpload) IsExecutable(context cor.Context) bool {
	uploaded, _ := cor.Value[bool](context, ParamUploaded)
	return c.BaseCommand.IsExecutable(context) && !uploaded
}

func (c *MediaUpload) Execute(context cor.Context) {
	uri, _ := cor.Value[string](context, c.GetInputParam())
	path, _ := cor.Value[string](context, ParamLocalPath)
	name, _ := cor.Value[string](context, ParamFileName)

	if _, err := c.client.UploadVideo(context.GetContext(), path, name); err != nil {
		c.Fail(context, err)
		return
	}

	slog.InfoContext(context.GetContext(), "media uploaded", "file", name)
	c.Succeed(context)
	context.Add(ParamUploaded, true)
	context.Add(c.GetOutputParam(), uri)
}
