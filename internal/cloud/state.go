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
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ServiceClients bundles every long lived client the process needs so they
// are created once at startup and closed together at shutdown.
type ServiceClients struct {
	Store         *SQLiteStore       // Key-value persistence for personas, the active persona and the draft index.
	EditService   *EditServiceClient // Client of the remote edit service.
	Drafts        DraftStore         // Where abandoned artifacts are kept.
	StorageClient *storage.Client    // Only set when the gcs draft backend is selected.
}

// Close releases every client that holds resources.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

// NewServiceClients opens the key-value store, builds the edit service client
// and selects the draft backend from config.
func NewServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	kv, err := OpenSQLiteStore(ctx, config.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	clients := &ServiceClients{
		Store:       kv,
		EditService: NewEditServiceClient(config.Remote, nil),
	}

	switch config.Drafts.Backend {
	case DraftBackendGCS:
		if config.Drafts.GCSBucket == "" {
			_ = clients.Close()
			return nil, fmt.Errorf("drafts.gcs_bucket is required for the %s draft backend", DraftBackendGCS)
		}
		opts := make([]option.ClientOption, 0)
		if config.Drafts.GCSEndpoint != "" {
			opts = append(opts, option.WithEndpoint(config.Drafts.GCSEndpoint), option.WithoutAuthentication())
		}
		sc, err := storage.NewClient(ctx, opts...)
		if err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		clients.StorageClient = sc
		clients.Drafts = NewGCSDraftStore(sc, config.Drafts.GCSBucket, config.Drafts.GCSPrefix)
	case DraftBackendLocal:
		clients.Drafts = NewLocalDraftStore(config.Storage.DraftDir, kv, config.Storage.Keys.Drafts)
	default:
		_ = clients.Close()
		return nil, fmt.Errorf("unknown draft backend %q", config.Drafts.Backend)
	}

	slog.InfoContext(ctx, "service clients ready",
		"database", config.Storage.DatabasePath,
		"remote", clients.EditService.BaseURL(),
		"drafts", config.Drafts.Backend)
	return clients, nil
}
