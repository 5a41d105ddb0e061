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
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// RemoteFileCheck asks the edit service whether the file is already stored.
// The check is an optimisation only: when it fails the command logs and
// lets the upload run, it never records an error.
type RemoteFileCheck struct {
	cor.BaseCommand
	client FileChecker
}

// NewRemoteFileCheck is the constructor for the RemoteFileCheck command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: Answers whether the edit service already holds a filename.
func NewRemoteFileCheck(name string, client FileChecker) *RemoteFileCheck {
	return &RemoteFileCheck{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

func (c *RemoteFileCheck) IsExecutable(context cor.Context) bool {
	uploaded, _ := cor.Value[bool](context, ParamUploaded)
	return c.BaseCommand.IsExecutable(context) && !uploaded
}

func (c *RemoteFileCheck) Execute(context cor.Context) {
	uri, _ := cor.Value[string](context, c.GetInputParam())
	name, _ := cor.Value[string](context, ParamFileName)

	resp, err := c.client.CheckFile(context.GetContext(), name)
	if err != nil {
		// Counted, but not recorded on the context.
		if c.GetErrorCounter() != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
		}
		slog.WarnContext(context.GetContext(), "existence check failed, falling back to upload",
			"file", name, "error", err)
	} else if resp.Status == model.StatusSuccess && resp.Exists {
		slog.InfoContext(context.GetContext(), "file already on edit service, skipping upload", "file", name)
		context.Add(ParamUploaded, true)
		context.Add(ParamDedupHit, true)
		c.Succeed(context)
	}
	context.Add(c.GetOutputParam(), uri)
}
