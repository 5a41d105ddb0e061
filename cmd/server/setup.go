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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/api"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/cloud"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/services"
)

// StateManager holds the long lived components of the process.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	personas *services.PersonaRepository
	active   *services.ActivePersonaManager
	sessions *services.SessionRegistry
}

var state = &StateManager{}

// SetupOS defaults the configuration directory and runtime when the
// environment does not set them.
func SetupOS() error {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		return os.Setenv(cloud.EnvConfigRuntime, cloud.DefaultRuntime)
	}
	return nil
}

// GetConfig loads .env, then the TOML configuration.
func GetConfig() (*cloud.Config, error) {
	if state.config != nil {
		return state.config, nil
	}
	if err := cloud.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := SetupOS(); err != nil {
		return nil, fmt.Errorf("failed to setup environment: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	state.config = config
	return config, nil
}

// InitState opens the service clients and wires the services on top of
// them. The persisted active persona is restored before the API starts.
func InitState(ctx context.Context, config *cloud.Config) error {
	clients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = clients

	keys := config.Storage.Keys
	state.personas = services.NewPersonaRepository(clients.Store, keys.Personas, config.Personas.UniqueIDs)
	state.active = services.NewActivePersonaManager(clients.Store, keys.ActivePersona, state.personas)
	state.active.Restore(ctx)

	guard := services.NewDraftAutoSaveGuard(clients.Drafts)
	state.sessions = services.NewSessionRegistry(clients.EditService, guard, config.Storage.ArtifactDir, config.Drafts.TeardownTimeout())
	return nil
}

// Handlers returns the API handlers bound to the current state.
func Handlers() *api.Handlers {
	return &api.Handlers{
		Remote:   state.cloud.EditService,
		Personas: state.personas,
		Active:   state.active,
		Sessions: state.sessions,
	}
}
