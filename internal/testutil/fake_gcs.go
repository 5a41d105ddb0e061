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
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	raw "google.golang.org/api/storage/v1"
)

// FakeGCS answers the subset of the Cloud Storage JSON API used by the draft
// store: multipart object inserts and object listing.
type FakeGCS struct {
	Server *httptest.Server

	mutex   sync.Mutex
	objects map[string]*raw.Object
	content map[string][]byte
}

// NewFakeGCS starts the fake and closes it when the test ends.
func NewFakeGCS(t *testing.T) *FakeGCS {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeGCS{objects: make(map[string]*raw.Object), content: make(map[string][]byte)}
	router := gin.New()
	router.POST("/upload/storage/v1/b/:bucket/o", f.insert)
	router.GET("/storage/v1/b/:bucket/o", f.list)

	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Server.Close)
	return f
}

// Client returns a storage client talking to the fake.
func (f *FakeGCS) Client(t *testing.T) *storage.Client {
	t.Helper()
	client, err := storage.NewClient(context.Background(),
		option.WithEndpoint(f.Server.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Content returns the bytes stored for bucket/name.
func (f *FakeGCS) Content(bucket string, name string) ([]byte, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	b, ok := f.content[bucket+"/"+name]
	return b, ok
}

func (f *FakeGCS) insert(c *gin.Context) {
	bucket := c.Param("bucket")
	mediaType, params, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		c.String(http.StatusBadRequest, "expected a multipart upload")
		return
	}
	reader := multipart.NewReader(c.Request.Body, params["boundary"])

	meta := &raw.Object{}
	part, err := reader.NextPart()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if err := json.NewDecoder(part).Decode(meta); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	part, err = reader.NextPart()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(part)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	key := bucket + "/" + meta.Name
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, exists := f.objects[key]; exists && c.Query("ifGenerationMatch") == "0" {
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": gin.H{"code": 412, "message": "object exists"}})
		return
	}
	meta.Bucket = bucket
	meta.Size = uint64(len(data))
	meta.Generation = time.Now().UnixNano()
	meta.TimeCreated = time.Now().UTC().Format(time.RFC3339Nano)
	f.objects[key] = meta
	f.content[key] = data
	c.JSON(http.StatusOK, meta)
}

func (f *FakeGCS) list(c *gin.Context) {
	bucket := c.Param("bucket")
	prefix := c.Query("prefix")

	f.mutex.Lock()
	items := make([]*raw.Object, 0)
	for key, o := range f.objects {
		if strings.HasPrefix(key, bucket+"/"+prefix) {
			items = append(items, o)
		}
	}
	f.mutex.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	c.JSON(http.StatusOK, raw.Objects{Kind: "storage#objects", Items: items})
}
