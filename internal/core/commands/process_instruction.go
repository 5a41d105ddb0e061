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

// GenericProcessFailure is shown when the service reports failure without a
// message of its own.
const GenericProcessFailure = "video processing failed"

// ProcessInstruction sends the media and the instruction text to the edit
// service in one multipart request.
//
// The decoded response is published under ParamProcessResponse before the
// status is judged, so the server message reaches the timeline even when
// processing failed.
type ProcessInstruction struct {
	cor.BaseCommand
	client VideoProcessor
}

// NewProcessInstruction is the constructor for the ProcessInstruction command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The edit service client that runs the instruction.
//
// Outputs:
//   - *ProcessInstruction: A pointer to the newly instantiated command.
func NewProcessInstruction(name string, client VideoProcessor) *ProcessInstruction {
	return &ProcessInstruction{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

func (c *ProcessInstruction) Execute(context cor.Context) {
	path, _ := cor.Value[string](context, ParamLocalPath)
	instruction, _ := cor.Value[string](context, ParamInstruction)

	resp, err := c.client.ProcessVideo(context.GetContext(), path, instruction)
	if err != nil {
		c.Fail(context, err)
		return
	}
	context.Add(ParamProcessResponse, resp)

	if !resp.Succeeded() {
		msg := resp.Message
		if msg == "" {
			msg = GenericProcessFailure
		}
		slog.WarnContext(context.GetContext(), "edit service rejected instruction", "status", resp.Status, "message", resp.Message)
		c.Fail(context, model.NetworkError(c.GetName(), msg, nil))
		return
	}

	slog.InfoContext(context.GetContext(), "instruction processed", "output_path", resp.OutputPath)
	c.Succeed(context)
	context.Add(c.GetOutputParam(), resp)
}
