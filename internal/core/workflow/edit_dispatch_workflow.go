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

package workflow

import (
	"context"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/commands"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// ProcessStore is the part of the edit service the dispatch chain talks to.
type ProcessStore interface {
	commands.VideoProcessor
	commands.ArtifactDownloader
}

// DispatchOutcome is what one dispatch produced. Response is set whenever
// the service answered with a decodable body, even when processing failed;
// ArtifactPath is set only after a verified download.
type DispatchOutcome struct {
	Response     *model.ProcessResponse
	ArtifactPath string
}

// EditDispatchWorkflow runs one instruction against the session media in a
// fixed order: ensure-uploaded, process-instruction, artifact-download.
type EditDispatchWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// NewEditDispatchWorkflow is the constructor for the EditDispatchWorkflow. It
// builds the upload, process and download chain once.
//
// Inputs:
//   - uploader: Makes sure the working media is on the server before processing.
//   - client: The edit service client that processes instructions and serves results.
//   - artifactDir: The directory downloaded artifacts are written to.
//
// Returns:
//   - A pointer to a fully initialized EditDispatchWorkflow.
func NewEditDispatchWorkflow(uploader commands.Uploader, client ProcessStore, artifactDir string) *EditDispatchWorkflow {
	out := &EditDispatchWorkflow{BaseCommand: *cor.NewBaseCommand("edit-dispatch-workflow")}
	out.initializeChain(uploader, client, artifactDir)
	return out
}

func (m *EditDispatchWorkflow) initializeChain(uploader commands.Uploader, client ProcessStore, artifactDir string) {
	out := cor.NewBaseChain(m.GetName())
	out.AddCommand(commands.NewEnsureUploaded("ensure-uploaded", uploader))
	out.AddCommand(commands.NewProcessInstruction("process-instruction", client))
	out.AddCommand(commands.NewArtifactDownload("artifact-download", client, artifactDir))
	m.chain = out
}

func (m *EditDispatchWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// Dispatch sends instruction for the media at localURI. The outcome is never
// nil; the error is the first classified failure of the chain.
func (m *EditDispatchWorkflow) Dispatch(ctx context.Context, localURI string, instruction string) (*DispatchOutcome, error) {
	chCtx := cor.NewContextWith(ctx)
	defer chCtx.Close()
	chCtx.Add(cor.CtxIn, localURI)
	chCtx.Add(commands.ParamLocalURI, localURI)
	chCtx.Add(commands.ParamInstruction, instruction)

	m.Execute(chCtx)

	outcome := &DispatchOutcome{}
	outcome.Response, _ = cor.Value[*model.ProcessResponse](chCtx, commands.ParamProcessResponse)
	if err := chCtx.FirstError(); err != nil {
		return outcome, err
	}
	outcome.ArtifactPath, _ = cor.Value[string](chCtx, commands.ParamArtifactPath)
	return outcome, nil
}
