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
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/commands"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/cor"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/workflow"
)

// Timeline texts appended by the session.
const (
	PleaseWaitMessage      = "please wait for the current edit to finish"
	AppliedPersonaPrefix   = "Applied Persona: "
	AppliedPersonaFallback = "Style Applied"
	PreviewMessage         = "Processed video is ready"
	SelectedMessage        = "Selected this version as the working video"
	DiscardedMessage       = "Discarded the processed video"
	SavedPersonaPrefix     = "Saved as Persona: "
)

// TeardownHook runs when a session is closed.
type TeardownHook func(ctx context.Context) error

// RemoteEditSession is one editing conversation over one working media
// file. It runs at most one dispatch at a time and keeps the message
// timeline the screens render.
type RemoteEditSession struct {
	id              string
	uploads         *workflow.UploadCoordinator
	dispatcher      *workflow.EditDispatchWorkflow
	cleanup         cor.Command
	guard           *DraftAutoSaveGuard
	teardownTimeout time.Duration
	now             func() time.Time

	mutex             sync.Mutex
	localURI          string
	uploadedURI       string
	isProcessing      bool
	processedArtifact string
	lastInstruction   string
	messages          []model.Message
	hooks             []TeardownHook
	closed            bool

	background sync.WaitGroup
}

// SessionOptions carries the collaborators of a session.
type SessionOptions struct {
	Client          workflow.UploadStore
	Processor       workflow.ProcessStore
	ArtifactDir     string
	Guard           *DraftAutoSaveGuard
	TeardownTimeout time.Duration
}

// NewRemoteEditSession creates a session whose working media is localURI.
// The upload coordinator and its marker belong to this session only.
func NewRemoteEditSession(localURI string, opts SessionOptions) *RemoteEditSession {
	uploads := workflow.NewUploadCoordinator(opts.Client)
	s := &RemoteEditSession{
		id:              uuid.NewString(),
		uploads:         uploads,
		dispatcher:      workflow.NewEditDispatchWorkflow(uploads, opts.Processor, opts.ArtifactDir),
		cleanup:         commands.NewArtifactCleanup("artifact-cleanup"),
		guard:           opts.Guard,
		teardownTimeout: opts.TeardownTimeout,
		now:             time.Now,
		messages:        make([]model.Message, 0),
	}
	if strings.TrimSpace(localURI) != "" {
		s.localURI = model.NormalizeFileURI(localURI)
	}
	s.RegisterTeardown(s.autoSave)
	return s
}

// ID returns the session id.
func (s *RemoteEditSession) ID() string {
	return s.id
}

// RegisterTeardown adds a hook that Close runs, in registration order.
func (s *RemoteEditSession) RegisterTeardown(hook TeardownHook) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Snapshot returns a copy of the session state.
func (s *RemoteEditSession) Snapshot() model.MediaSession {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	messages := make([]model.Message, len(s.messages))
	copy(messages, s.messages)
	return model.MediaSession{
		ID:                   s.id,
		LocalURI:             s.localURI,
		UploadedURI:          s.uploadedURI,
		IsProcessing:         s.isProcessing,
		ProcessedArtifactURI: s.processedArtifact,
		LastInstruction:      s.lastInstruction,
		Messages:             messages,
	}
}

// Preload uploads the working media ahead of the first dispatch. Failures
// are logged; the next dispatch retries the upload.
func (s *RemoteEditSession) Preload(ctx context.Context) {
	s.mutex.Lock()
	uri := s.localURI
	s.mutex.Unlock()
	if uri == "" {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.preload(context.WithoutCancel(ctx), uri)
	}()
}

// WaitIdle blocks until background uploads have finished.
func (s *RemoteEditSession) WaitIdle() {
	s.background.Wait()
}

func (s *RemoteEditSession) preload(ctx context.Context, uri string) {
	if err := s.uploads.EnsureUploaded(ctx, uri); err != nil {
		slog.WarnContext(ctx, "pre-upload failed", "session", s.id, "uri", uri, "error", err)
		return
	}
	s.markUploaded(uri)
}

// Dispatch sends instruction for the working media and records the result
// on the timeline.
//
// A call made while another dispatch is in flight fails immediately with a
// StateError and touches nothing. The processing flag is cleared on every
// exit path. The returned error is the first classified failure; the server
// message, when there is one, is on the timeline either way.
func (s *RemoteEditSession) Dispatch(ctx context.Context, instruction string) error {
	return s.dispatch(ctx, instruction, "")
}

// dispatch runs one edit. A non-empty applied persona name is recorded
// together with the processing claim.
func (s *RemoteEditSession) dispatch(ctx context.Context, instruction string, applied string) error {
	uri, err := s.begin(instruction, applied)
	if err != nil {
		return err
	}
	defer s.finish()

	outcome, err := s.dispatcher.Dispatch(ctx, uri, instruction)

	s.mutex.Lock()
	if s.uploads.LastUploaded() == uri {
		s.uploadedURI = uri
	}
	if outcome.Response != nil && outcome.Response.Message != "" {
		s.appendLocked(model.Message{Text: outcome.Response.Message})
	}
	var orphan string
	if err == nil && outcome.ArtifactPath != "" {
		artifact := model.NormalizeFileURI(outcome.ArtifactPath)
		s.processedArtifact = artifact
		s.appendLocked(model.Message{
			Text:        PreviewMessage,
			Kind:        model.MessagePreview,
			ArtifactURI: artifact,
			Selectable:  true,
		})
		if s.closed {
			orphan = artifact
			s.processedArtifact = ""
		}
	}
	s.mutex.Unlock()

	if orphan != "" {
		// The session went away while the edit ran; keep the result as a draft.
		s.saveOrphan(ctx, orphan)
	}
	if err != nil {
		slog.WarnContext(ctx, "dispatch failed", "session", s.id, "kind", model.KindOf(err), "error", err)
	}
	return err
}

// begin claims the processing flag. Nothing is written to the session
// unless the claim succeeds.
func (s *RemoteEditSession) begin(instruction string, applied string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return "", model.StateError("session.dispatch", "session is closed")
	}
	if s.isProcessing {
		return "", model.StateError("session.dispatch", PleaseWaitMessage)
	}
	if s.localURI == "" {
		return "", model.ValidationError("session.dispatch", "no media selected")
	}
	if strings.TrimSpace(instruction) == "" {
		return "", model.ValidationError("session.dispatch", "instruction is empty")
	}
	s.isProcessing = true
	if applied != "" {
		s.lastInstruction = instruction
		s.appendLocked(model.Message{Text: AppliedPersonaPrefix + applied})
	}
	s.appendLocked(model.Message{Text: instruction, IsUser: true})
	return s.localURI, nil
}

func (s *RemoteEditSession) finish() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isProcessing = false
}

// ApplyPersona records the persona as the last applied style and dispatches
// its instruction. When another dispatch is in flight it fails with a
// StateError and neither the timeline nor the last applied style change.
func (s *RemoteEditSession) ApplyPersona(ctx context.Context, state *model.ActivePersonaState) error {
	if state == nil || strings.TrimSpace(state.Instruction) == "" {
		return model.ValidationError("session.apply_persona", "no persona instruction to apply")
	}
	name := state.Name
	if name == "" {
		if n, ok := StyleNameFromInstruction(state.Instruction); ok {
			name = n
		} else {
			name = AppliedPersonaFallback
		}
	}
	return s.dispatch(ctx, state.Instruction, name)
}

// SelectArtifact promotes a previewed artifact to the working media and
// starts uploading it in the background.
func (s *RemoteEditSession) SelectArtifact(ctx context.Context, artifactURI string) error {
	if strings.TrimSpace(artifactURI) == "" {
		return model.ValidationError("session.select", "artifact uri is empty")
	}
	uri := model.NormalizeFileURI(artifactURI)
	if _, err := os.Stat(model.LocalPath(uri)); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return model.PermissionError("session.select", "artifact is not readable", err)
		}
		return model.FileSystemError("session.select", fmt.Sprintf("artifact %s not found", model.FileNameOf(uri)), err)
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return model.StateError("session.select", "session is closed")
	}
	s.uploads.Reset()
	s.localURI = uri
	s.uploadedURI = ""
	if s.processedArtifact == uri {
		s.processedArtifact = ""
	}
	s.markPreviewsLocked(uri)
	s.appendLocked(model.Message{Text: SelectedMessage})
	s.mutex.Unlock()

	slog.InfoContext(ctx, "artifact promoted to working media", "session", s.id, "uri", uri)
	s.Preload(ctx)
	return nil
}

// DiscardArtifact drops the pending processed artifact and removes its file.
// A discarded artifact is never saved as a draft.
func (s *RemoteEditSession) DiscardArtifact(ctx context.Context) error {
	s.mutex.Lock()
	artifact := s.processedArtifact
	if artifact == "" {
		s.mutex.Unlock()
		return model.ValidationError("session.discard", "no processed video to discard")
	}
	s.processedArtifact = ""
	s.markPreviewsLocked(artifact)
	s.appendLocked(model.Message{Text: DiscardedMessage})
	s.mutex.Unlock()

	chCtx := cor.NewContextWith(ctx)
	defer chCtx.Close()
	chCtx.Add(cor.CtxIn, artifact)
	s.cleanup.Execute(chCtx)
	return nil
}

// SaveAsPersona stores the last applied instruction as a user persona.
func (s *RemoteEditSession) SaveAsPersona(ctx context.Context, personas *PersonaRepository) (*model.Persona, error) {
	s.mutex.Lock()
	instruction := s.lastInstruction
	s.mutex.Unlock()

	persona := PersonaFromInstruction(instruction, s.now())
	if err := personas.Add(ctx, *persona); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	s.appendLocked(model.Message{Text: SavedPersonaPrefix + persona.Name})
	s.mutex.Unlock()
	return persona, nil
}

// TakePendingArtifact returns the unresolved processed artifact and clears
// the reference.
func (s *RemoteEditSession) TakePendingArtifact() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	artifact := s.processedArtifact
	s.processedArtifact = ""
	return artifact
}

// Blur handles focus loss: the pending artifact is saved as a draft and the
// session stays usable.
func (s *RemoteEditSession) Blur(ctx context.Context) error {
	ctx, cancel := s.teardownContext(ctx)
	defer cancel()
	return s.autoSave(ctx)
}

// Close runs the teardown hooks once, bounded by the teardown timeout.
// Later calls are no-ops. A dispatch still in flight completes on its own
// and saves its result as a draft.
func (s *RemoteEditSession) Close(ctx context.Context) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	hooks := make([]TeardownHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mutex.Unlock()

	ctx, cancel := s.teardownContext(ctx)
	defer cancel()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	slog.InfoContext(ctx, "session closed", "session", s.id)
	return errors.Join(errs...)
}

func (s *RemoteEditSession) autoSave(ctx context.Context) error {
	artifact := s.TakePendingArtifact()
	if artifact == "" || s.guard == nil {
		return nil
	}
	if !s.guard.Guard(ctx, artifact) {
		s.restorePending(artifact)
	}
	return nil
}

// restorePending puts back an artifact whose draft save failed, unless a
// newer one has arrived in the meantime.
func (s *RemoteEditSession) restorePending(artifact string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.processedArtifact == "" {
		s.processedArtifact = artifact
	}
}

func (s *RemoteEditSession) saveOrphan(ctx context.Context, artifact string) {
	if s.guard == nil {
		return
	}
	ctx, cancel := s.teardownContext(context.WithoutCancel(ctx))
	defer cancel()
	s.guard.Guard(ctx, artifact)
}

func (s *RemoteEditSession) teardownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.teardownTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.teardownTimeout)
}

func (s *RemoteEditSession) markUploaded(uri string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.localURI == uri {
		s.uploadedURI = uri
	}
}

func (s *RemoteEditSession) markPreviewsLocked(artifact string) {
	for i := range s.messages {
		if s.messages[i].ArtifactURI == artifact {
			s.messages[i].Selectable = false
		}
	}
}

func (s *RemoteEditSession) appendLocked(m model.Message) {
	m.ID = uuid.NewString()
	if m.Kind == "" {
		m.Kind = model.MessageText
	}
	m.CreatedAt = s.now()
	s.messages = append(s.messages, m)
}
