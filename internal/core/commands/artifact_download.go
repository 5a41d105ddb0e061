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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// ArtifactFilePrefix and ArtifactFileExtension name downloaded artifacts:
// temp_video_<unix millis>.mp4.
const (
	ArtifactFilePrefix    = "temp_video_"
	ArtifactFileExtension = ".mp4"
)

// ArtifactDownload fetches the artifact named by a successful process
// response into the artifact directory. A download that yields zero bytes
// is removed and reported as a FileSystemError.
type ArtifactDownload struct {
	cor.BaseCommand
	client      ArtifactDownloader
	artifactDir string
	now         func() time.Time
}

// NewArtifactDownload is the constructor for the ArtifactDownload command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: Fetches the server-side output path.
//   - artifactDir: The directory processed artifacts are written to.
//
// Outputs:
//   - *ArtifactDownload: A pointer to the newly instantiated command.
func NewArtifactDownload(name string, client ArtifactDownloader, artifactDir string) *ArtifactDownload {
	return &ArtifactDownload{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		artifactDir: artifactDir,
		now:         time.Now,
	}
}

// IsExecutable requires a successful process response on the context.
func (c *ArtifactDownload) IsExecutable(context cor.Context) bool {
	resp, ok := cor.Value[*model.ProcessResponse](context, ParamProcessResponse)
	return c.BaseCommand.IsExecutable(context) && ok && resp.Succeeded() && resp.OutputPath != ""
}

// nextArtifactPath picks a file name that does not exist yet.
func (c *ArtifactDownload) nextArtifactPath() string {
	millis := c.now().UnixMilli()
	for {
		candidate := filepath.Join(c.artifactDir, fmt.Sprintf("%s%d%s", ArtifactFilePrefix, millis, ArtifactFileExtension))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		millis++
	}
}

func (c *ArtifactDownload) Execute(context cor.Context) {
	resp, _ := cor.Value[*model.ProcessResponse](context, ParamProcessResponse)
	dest := c.nextArtifactPath()

	written, err := c.client.Download(context.GetContext(), resp.OutputPath, dest)
	if err != nil {
		c.Fail(context, err)
		return
	}
	if written == 0 {
		context.AddTempFile(dest)
		c.Fail(context, model.FileSystemError(c.GetName(), "downloaded file is empty", nil))
		return
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		context.AddTempFile(dest)
		c.Fail(context, model.FileSystemError(c.GetName(), "downloaded file is missing or empty", err))
		return
	}
	if !cloud.IsVideoFile(dest) {
		slog.WarnContext(context.GetContext(), "downloaded artifact does not look like a video", "path", dest)
	}

	slog.InfoContext(context.GetContext(), "artifact downloaded", "path", dest, "bytes", written)
	c.Succeed(context)
	context.Add(ParamArtifactPath, dest)
	context.Add(c.GetOutputParam(), dest)
}
