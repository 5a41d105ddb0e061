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

// Package api exposes the orchestrator to the screens through a local JSON
// API. Handlers are thin: they bind the request, call one service method and
// translate classified errors into HTTP statuses.
package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
)

// dispatchRemoteCalls is the longest run of sequential edit service calls a
// single request makes: check, upload, process and download.
const dispatchRemoteCalls = 4

// writeSlack covers local work around the remote calls.
const writeSlack = 30 * time.Second

// WriteTimeout returns the server write deadline for an edit service whose
// calls may each take up to remoteTimeout.
func WriteTimeout(remoteTimeout time.Duration) time.Duration {
	return dispatchRemoteCalls*remoteTimeout + writeSlack
}

// HealthChecker reports whether the edit service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*model.HealthResponse, error)
}

// Handlers holds the services the routes call into.
type Handlers struct {
	Remote   HealthChecker
	Personas *services.PersonaRepository
	Active   *services.ActivePersonaManager
	Sessions *services.SessionRegistry
}

// NewRouter builds the gin engine with tracing, CORS and every route under
// /api/v1.
func NewRouter(h *Handlers, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		h.Dashboard(apiV1)
		h.PersonaRouter(apiV1)
		h.ActivePersonaRouter(apiV1)
		h.SessionRouter(apiV1)
	}
	return r
}
