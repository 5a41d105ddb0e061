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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// Object metadata keys written on every draft object.
const (
	draftNameMetadata = "draft-name"
	draftIDMetadata   = "draft-id"
)

// GCSObject identifies a Cloud Storage object.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "video/mp4").
}

// URI returns the gs:// form of the object location.
func (o GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// GCSDraftStore archives drafts as objects under a prefix of one bucket. The
// object listing is the index; draft names travel as object metadata.
type GCSDraftStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSDraftStore creates a draft store writing to bucket.
//
// Inputs:
//   - client: A storage client. Its endpoint may point at an emulator.
//   - bucket: The bucket drafts are written to.
//   - prefix: The object prefix, without leading or trailing slashes.
func NewGCSDraftStore(client *storage.Client, bucket string, prefix string) *GCSDraftStore {
	return &GCSDraftStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *GCSDraftStore) objectName(name string, id string, sourcePath string) string {
	file := draftFileName(name, id, sourcePath)
	if s.prefix == "" {
		return file
	}
	return path.Join(s.prefix, file)
}

// SaveDraft uploads sourcePath as a new object. The object name carries the
// draft id; the display name is kept in the object metadata.
func (s *GCSDraftStore) SaveDraft(ctx context.Context, name string, sourcePath string) (*model.Draft, error) {
	const op = "save_draft"
	dat, err := os.Open(sourcePath)
	if err != nil {
		return nil, classifyFileError(op, "draft source is not readable", err)
	}
	defer dat.Close()

	id := uuid.NewString()
	object := GCSObject{Bucket: s.bucket, Name: s.objectName(name, id, sourcePath), MIMEType: SniffContentType(sourcePath)}

	// Never replace an existing object.
	writer := s.client.Bucket(object.Bucket).Object(object.Name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = object.MIMEType
	writer.Metadata = map[string]string{draftNameMetadata: name, draftIDMetadata: id}

	if written, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		slog.ErrorContext(ctx, "partial draft upload", "object", object.URI(), "written", written, "error", err)
		return nil, model.NetworkError(op, "failed to upload draft", err)
	}
	// The object is only committed once Close returns without error.
	if err := writer.Close(); err != nil {
		return nil, model.NetworkError(op, "failed to finalize draft upload", err)
	}

	slog.InfoContext(ctx, "draft archived", "name", name, "object", object.URI())
	return &model.Draft{ID: id, Name: name, Path: object.URI(), CreatedAt: time.Now().UTC()}, nil
}

// ListDrafts lists the draft objects under the prefix.
func (s *GCSDraftStore) ListDrafts(ctx context.Context) ([]model.Draft, error) {
	query := &storage.Query{}
	if s.prefix != "" {
		query.Prefix = s.prefix + "/"
	}
	it := s.client.Bucket(s.bucket).Objects(ctx, query)

	drafts := make([]model.Draft, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, model.NetworkError("list_drafts", "failed to list drafts", err)
		}
		name := attrs.Metadata[draftNameMetadata]
		if name == "" {
			name = strings.TrimSuffix(path.Base(attrs.Name), path.Ext(attrs.Name))
		}
		drafts = append(drafts, model.Draft{
			ID:        attrs.Metadata[draftIDMetadata],
			Name:      name,
			Path:      GCSObject{Bucket: attrs.Bucket, Name: attrs.Name}.URI(),
			CreatedAt: attrs.Created,
		})
	}
	return drafts, nil
}
