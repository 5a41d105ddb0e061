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

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// LocalFileCheck validates that the media URI on the input parameter points
// to a readable, non-empty regular file. It publishes the filesystem path and
// the derived remote filename for the commands that follow.
type LocalFileCheck struct {
	cor.BaseCommand
}

// NewLocalFileCheck is the constructor for the LocalFileCheck command.
func NewLocalFileCheck(name string) *LocalFileCheck {
	return &LocalFileCheck{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *LocalFileCheck) Execute(context cor.Context) {
	uri, ok := cor.Value[string](context, c.GetInputParam())
	if !ok || uri == "" {
		c.Fail(context, model.ValidationError(c.GetName(), "no media selected"))
		return
	}

	path := model.LocalPath(uri)
	name := model.FileNameOf(uri)
	if name == "" {
		c.Fail(context, model.FileSystemError(c.GetName(), fmt.Sprintf("cannot derive a file name from %s", uri), nil))
		return
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.Fail(context, model.FileSystemError(c.GetName(), fmt.Sprintf("file does not exist: %s", path), err))
		return
	case errors.Is(err, os.ErrPermission):
		c.Fail(context, model.PermissionError(c.GetName(), fmt.Sprintf("file is not accessible: %s", path), err))
		return
	case err != nil:
		c.Fail(context, model.FileSystemError(c.GetName(), fmt.Sprintf("cannot read file: %s", path), err))
		return
	case info.IsDir():
		c.Fail(context, model.FileSystemError(c.GetName(), fmt.Sprintf("not a file: %s", path), nil))
		return
	case info.Size() == 0:
		c.Fail(context, model.FileSystemError(c.GetName(), fmt.Sprintf("file is empty: %s", path), nil))
		return
	}

	slog.DebugContext(context.GetContext(), "local media verified", "path", path, "size", info.Size())
	c.Succeed(context)
	context.Add(ParamLocalPath, path)
	context.Add(ParamFileName, name)
	context.Add(c.GetOutputParam(), uri)
}
