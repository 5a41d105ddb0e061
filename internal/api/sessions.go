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
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
)

type openSessionRequest struct {
	LocalURI string `json:"local_uri"`
}

type dispatchRequest struct {
	Instruction string `json:"instruction"`
}

type selectRequest struct {
	ArtifactURI string `json:"artifact_uri"`
}

// SessionRouter registers the edit session routes. Every route below
// /sessions/:id answers 404 for an unknown session.
func (h *Handlers) SessionRouter(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", func(c *gin.Context) {
			var req openSessionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			// The background upload outlives this request.
			s, err := h.Sessions.Open(context.WithoutCancel(c.Request.Context()), req.LocalURI)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusCreated, s.Snapshot())
		})

		sessions.GET("/:id", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			c.JSON(http.StatusOK, s.Snapshot())
		}))

		sessions.POST("/:id/dispatch", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			var req dispatchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			instruction := req.Instruction
			if instruction == "" {
				if current := h.Active.Current(); current != nil {
					instruction = current.Instruction
				}
			}
			// A dispatch runs to completion even when the client goes away.
			h.respond(c, s, s.Dispatch(context.WithoutCancel(c.Request.Context()), instruction))
		}))

		sessions.POST("/:id/apply-persona", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			current := h.Active.Current()
			if current == nil {
				abortWithError(c, model.ValidationError("session.apply_persona", "no active persona"))
				return
			}
			h.respond(c, s, s.ApplyPersona(context.WithoutCancel(c.Request.Context()), current))
		}))

		sessions.POST("/:id/select", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			var req selectRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
			err := s.SelectArtifact(context.WithoutCancel(c.Request.Context()), req.ArtifactURI)
			h.respond(c, s, err)
		}))

		sessions.POST("/:id/discard", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			h.respond(c, s, s.DiscardArtifact(context.WithoutCancel(c.Request.Context())))
		}))

		sessions.POST("/:id/save-persona", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			p, err := s.SaveAsPersona(context.WithoutCancel(c.Request.Context()), h.Personas)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusCreated, p)
		}))

		sessions.POST("/:id/blur", h.withSession(func(c *gin.Context, s *services.RemoteEditSession) {
			h.respond(c, s, s.Blur(context.WithoutCancel(c.Request.Context())))
		}))

		sessions.DELETE("/:id", func(c *gin.Context) {
			if err := h.Sessions.Close(context.WithoutCancel(c.Request.Context()), c.Param("id")); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

func (h *Handlers) withSession(next func(c *gin.Context, s *services.RemoteEditSession)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.Sessions.Get(c.Param("id"))
		if !ok {
			notFound(c, "session")
			return
		}
		next(c, s)
	}
}

// respond answers with the session snapshot, or with the classified error.
func (h *Handlers) respond(c *gin.Context, s *services.RemoteEditSession, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}
