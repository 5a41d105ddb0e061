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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
)

type createPersonaRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURI    string `json:"imageUri"`
}

type activatePersonaRequest struct {
	PresetID  string `json:"preset_id"`
	PersonaID string `json:"persona_id"`
}

// PersonaRouter registers the persona library routes.
func (h *Handlers) PersonaRouter(r *gin.RouterGroup) {
	personas := r.Group("/personas")
	{
		personas.GET("", func(c *gin.Context) {
			out, err := h.Personas.GetAll(c.Request.Context())
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		personas.POST("", func(c *gin.Context) {
			var req createPersonaRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			p, err := services.NewUserPersona(req.Name, req.Description, req.ImageURI, time.Now())
			if err != nil {
				abortWithError(c, err)
				return
			}
			if err := h.Personas.Add(c.Request.Context(), *p); err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusCreated, p)
		})

		personas.POST("/from-preset/:presetId", func(c *gin.Context) {
			p, err := services.PersonaFromPreset(c.Param("presetId"), time.Now())
			if err != nil {
				abortWithError(c, err)
				return
			}
			if err := h.Personas.Add(c.Request.Context(), *p); err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusCreated, p)
		})

		personas.PUT("/:id", func(c *gin.Context) {
			var p model.Persona
			if err := c.ShouldBindJSON(&p); err != nil {
				badRequest(c, err)
				return
			}
			p.ID = c.Param("id")
			if err := p.Validate(); err != nil {
				abortWithError(c, err)
				return
			}
			if err := h.Personas.Update(c.Request.Context(), p); err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, p)
		})

		personas.DELETE("/:id", func(c *gin.Context) {
			if err := h.Personas.Delete(c.Request.Context(), c.Param("id")); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})

		personas.DELETE("", func(c *gin.Context) {
			if err := h.Personas.Clear(c.Request.Context()); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// ActivePersonaRouter registers the routes of the active persona slot.
func (h *Handlers) ActivePersonaRouter(r *gin.RouterGroup) {
	active := r.Group("/active-persona")
	{
		active.GET("", func(c *gin.Context) {
			current := h.Active.Current()
			if current == nil {
				notFound(c, "active persona")
				return
			}
			c.JSON(http.StatusOK, current)
		})

		active.PUT("", func(c *gin.Context) {
			var req activatePersonaRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			var (
				state *model.ActivePersonaState
				err   error
			)
			switch {
			case req.PresetID != "":
				state, err = h.Active.ApplyPreset(c.Request.Context(), req.PresetID)
			case req.PersonaID != "":
				state, err = h.Active.ApplyUserPersona(c.Request.Context(), req.PersonaID)
			default:
				abortWithError(c, model.ValidationError("active_persona.apply", "preset_id or persona_id is required"))
				return
			}
			if err != nil {
				abortWithError(c, err)
				return
			}
			if state == nil {
				notFound(c, "persona")
				return
			}
			c.JSON(http.StatusOK, state)
		})

		active.DELETE("", func(c *gin.Context) {
			if err := h.Active.Clear(c.Request.Context()); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}
