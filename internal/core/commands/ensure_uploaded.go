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
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// EnsureUploaded delegates to the session's upload coordinator so that no
// instruction is ever sent for media the service has not seen.
type EnsureUploaded struct {
	cor.BaseCommand
	uploader Uploader
}

// NewEnsureUploaded wraps uploader as a chain step.
func NewEnsureUploaded(name string, uploader Uploader) *EnsureUploaded {
	return &EnsureUploaded{BaseCommand: *cor.NewBaseCommand(name), uploader: uploader}
}

func (c *EnsureUploaded) Execute(context cor.Context) {
	uri, ok := cor.Value[string](context, c.GetInputParam())
	if !ok || uri == "" {
		c.Fail(context, model.ValidationError(c.GetName(), "no media selected"))
		return
	}
	if err := c.uploader.EnsureUploaded(context.GetContext(), uri); err != nil {
		c.Fail(context, err)
		return
	}
	c.Succeed(context)
	context.Add(ParamLocalPath, model.LocalPath(uri))
	context.Add(c.GetOutputParam(), uri)
}
