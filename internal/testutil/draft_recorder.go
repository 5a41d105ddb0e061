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

package test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// DraftRecorder is a cloud.DraftStore that only remembers what it was asked
// to save. Fail makes every save return ErrInjected; Delay makes saves wait,
// honouring context cancellation.
type DraftRecorder struct {
	mutex  sync.Mutex
	drafts []model.Draft
	Fail   bool
	Delay  time.Duration
}

func NewDraftRecorder() *DraftRecorder {
	return &DraftRecorder{}
}

func (r *DraftRecorder) SaveDraft(ctx context.Context, name string, sourcePath string) (*model.Draft, error) {
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.Fail {
		return nil, ErrInjected
	}
	d := model.Draft{ID: uuid.NewString(), Name: name, Path: sourcePath, CreatedAt: time.Now().UTC()}
	r.drafts = append(r.drafts, d)
	return &d, nil
}

func (r *DraftRecorder) ListDrafts(_ context.Context) ([]model.Draft, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]model.Draft(nil), r.drafts...), nil
}

// Count returns the number of saved drafts.
func (r *DraftRecorder) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.drafts)
}
