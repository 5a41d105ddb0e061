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

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/commands"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// SessionRegistry tracks the open edit sessions of the process.
type SessionRegistry struct {
	options SessionOptions

	mutex    sync.RWMutex
	sessions map[string]*RemoteEditSession
}

// NewSessionRegistry creates a registry whose sessions share client for all
// remote calls.
func NewSessionRegistry(client commands.EditService, guard *DraftAutoSaveGuard, artifactDir string, teardownTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		options: SessionOptions{
			Client:          client,
			Processor:       client,
			ArtifactDir:     artifactDir,
			Guard:           guard,
			TeardownTimeout: teardownTimeout,
		},
		sessions: make(map[string]*RemoteEditSession),
	}
}

// Open starts a session for localURI and begins uploading it in the
// background.
func (r *SessionRegistry) Open(ctx context.Context, localURI string) (*RemoteEditSession, error) {
	if strings.TrimSpace(localURI) == "" {
		return nil, model.ValidationError("session.open", "local uri is empty")
	}
	s := NewRemoteEditSession(localURI, r.options)

	r.mutex.Lock()
	r.sessions[s.ID()] = s
	r.mutex.Unlock()

	slog.InfoContext(ctx, "session opened", "session", s.ID(), "uri", s.Snapshot().LocalURI)
	s.Preload(ctx)
	return s, nil
}

// Get returns the open session with id.
func (r *SessionRegistry) Get(id string) (*RemoteEditSession, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close tears down the session with id and forgets it. Closing an unknown
// id succeeds.
func (r *SessionRegistry) Close(ctx context.Context, id string) error {
	r.mutex.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mutex.Unlock()

	if !ok {
		return nil
	}
	return s.Close(ctx)
}

// CloseAll tears down every open session. It is called on shutdown.
func (r *SessionRegistry) CloseAll(ctx context.Context) error {
	r.mutex.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*RemoteEditSession)
	r.mutex.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.sessions)
}
