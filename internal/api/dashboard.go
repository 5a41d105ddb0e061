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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
)

// CatalogEntry is a built-in preset together with its compiled instruction.
type CatalogEntry struct {
	model.PresetPersona
	Instruction string `json:"instruction"`
}

// Dashboard registers the read-only routes: the remote health check and the
// preset catalog.
//
// Inputs:
//   - r: The /api/v1 router group.
//
// Routes:
//   - GET /health: Asks the edit service for its health. An unreachable
//     service answers 502.
//   - GET /presets: Lists the built-in presets with their instructions.
func (h *Handlers) Dashboard(r *gin.RouterGroup) {
	r.GET("/health", func(c *gin.Context) {
		out, err := h.Remote.HealthCheck(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/presets", func(c *gin.Context) {
		presets := model.BuiltInPresets()
		out := make([]CatalogEntry, 0, len(presets))
		for _, p := range presets {
			out = append(out, CatalogEntry{PresetPersona: p, Instruction: services.BuildPresetInstruction(p)})
		}
		c.JSON(http.StatusOK, out)
	})
}
