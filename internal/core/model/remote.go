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

package model

// StatusSuccess is the only status value the remote service uses for success.
const StatusSuccess = "success"

type CheckFileRequest struct {
	Filename string `json:"filename"`
}

type CheckFileResponse struct {
	Status string `json:"status"`
	Exists bool   `json:"exists"`
}

type UploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ProcessResponse is the body returned by the process endpoint.
type ProcessResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

// Succeeded reports whether the service accepted the instruction.
func (r *ProcessResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
