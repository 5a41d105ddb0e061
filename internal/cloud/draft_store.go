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

package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// DraftStore keeps processed artifacts that were never confirmed by the
// user.
type DraftStore interface {
	SaveDraft(ctx context.Context, name string, sourcePath string) (*model.Draft, error)
	ListDrafts(ctx context.Context) ([]model.Draft, error)
}

// LocalDraftStore copies artifacts into a directory and records them in a
// JSON index held by a KeyValueStore.
type LocalDraftStore struct {
	dir   string
	kv    KeyValueStore
	key   string
	mutex sync.Mutex
}

// NewLocalDraftStore creates a draft store rooted at dir.
//
// Inputs:
//   - dir: The directory draft files are copied into. Created on first save.
//   - kv: The key value store holding the draft index.
//   - indexKey: The key of the JSON draft index.
func NewLocalDraftStore(dir string, kv KeyValueStore, indexKey string) *LocalDraftStore {
	return &LocalDraftStore{dir: dir, kv: kv, key: indexKey}
}

// SaveDraft copies sourcePath into the draft directory and appends it to the
// index. name is the display name; the file name also carries the draft id
// so drafts saved within the same second never share a file.
func (s *LocalDraftStore) SaveDraft(ctx context.Context, name string, sourcePath string) (*model.Draft, error) {
	const op = "save_draft"
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, classifyFileError(op, "draft source is not readable", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, classifyFileError(op, "failed to create draft directory", err)
	}
	id := uuid.NewString()
	dest := filepath.Join(s.dir, draftFileName(name, id, sourcePath))
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, classifyFileError(op, "failed to create draft file", err)
	}
	_, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dest)
		return nil, classifyFileError(op, "failed to write draft file", firstNonNil(copyErr, closeErr))
	}

	draft := model.Draft{ID: id, Name: name, Path: dest, CreatedAt: time.Now().UTC()}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	drafts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	drafts = append(drafts, draft)
	if err := s.store(ctx, drafts); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "draft saved", "name", name, "path", dest)
	return &draft, nil
}

// ListDrafts returns the indexed drafts in save order.
func (s *LocalDraftStore) ListDrafts(ctx context.Context) ([]model.Draft, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.load(ctx)
}

func (s *LocalDraftStore) load(ctx context.Context) ([]model.Draft, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, model.FileSystemError("load_drafts", "failed to read draft index", err)
	}
	drafts := make([]model.Draft, 0)
	if !ok || len(raw) == 0 {
		return drafts, nil
	}
	if err := json.Unmarshal(raw, &drafts); err != nil {
		slog.WarnContext(ctx, "draft index is corrupt, starting a new one", "key", s.key, "error", err)
		return make([]model.Draft, 0), nil
	}
	return drafts, nil
}

func (s *LocalDraftStore) store(ctx context.Context, drafts []model.Draft) error {
	raw, err := json.Marshal(drafts)
	if err != nil {
		return model.FileSystemError("store_drafts", "failed to encode draft index", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return model.FileSystemError("store_drafts", "failed to write draft index", err)
	}
	return nil
}

// draftFileName makes name safe for a filesystem, suffixes it with id and
// keeps the source extension.
func draftFileName(name string, id string, sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	if ext == "" {
		ext = ".mp4"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if safe == "" {
		safe = "Draft"
	}
	return fmt.Sprintf("%s_%s%s", safe, id, ext)
}

func firstNonNil(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
