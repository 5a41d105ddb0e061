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

// Package main runs the edit-session orchestrator. It loads the
// configuration, sets up logging and telemetry, opens the persistent store
// and the edit service client, and serves the local control API until it
// receives SIGINT or SIGTERM. On shutdown every open session is torn down so
// unsaved processed videos are kept as drafts.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/api"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := GetConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	closeLog, err := telemetry.SetupLogging(config.Application.LogFile, config.Application.LogLevel, config.Telemetry.GoogleProjectID)
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer func() { _ = closeLog() }()
	slog.Info("Logging initialized", "level", config.Application.LogLevel)

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("Tracing initialized")

	if err := InitState(ctx, config); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		os.Exit(1)
	}
	slog.Info("Initialized State", "remote", state.cloud.EditService.BaseURL())

	srv := &http.Server{
		Addr:         config.Application.ListenAddr,
		Handler:      api.NewRouter(Handlers(), config.Application.Name),
		ReadTimeout:  20 * time.Second,
		WriteTimeout: api.WriteTimeout(config.Remote.Timeout()),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("Server ready", "addr", config.Application.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := state.sessions.CloseAll(shutdownCtx); err != nil {
		slog.Error("Failed to close sessions", "error", err)
	}
	if err := state.cloud.Close(); err != nil {
		slog.Error("Failed to close service clients", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown telemetry", "error", err)
	}
	slog.Info("Server exiting")
}
