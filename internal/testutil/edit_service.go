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
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// FakeEditService is an in-process edit service. Counters record how often
// each endpoint was hit; the exported fields shape the answers and may be
// changed between calls while no request is in flight.
type FakeEditService struct {
	Server *httptest.Server

	CheckCalls    atomic.Int32
	UploadCalls   atomic.Int32
	ProcessCalls  atomic.Int32
	DownloadCalls atomic.Int32

	mutex         sync.Mutex
	existing      map[string]bool
	uploaded      []string
	instructions  []string
	CheckFails    bool                  // /check-file answers 500.
	UploadStatus  int                   // HTTP status of /upload-video, 200 when zero.
	ProcessStatus int                   // HTTP status of /process-video, 200 when zero.
	ProcessBody   string                // Raw body of /process-video when set.
	ProcessResult model.ProcessResponse // JSON body of /process-video otherwise.
	Artifact      []byte                // Bytes served for the output path.

	// When ProcessGate is set the process handler signals ProcessStarted and
	// blocks until the gate is closed.
	ProcessGate    chan struct{}
	ProcessStarted chan struct{}
}

// NewFakeEditService starts the fake and closes it when the test ends. By
// default processing succeeds with output path /out/result.mp4.
func NewFakeEditService(t *testing.T) *FakeEditService {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeEditService{
		existing:      make(map[string]bool),
		ProcessResult: model.ProcessResponse{Status: model.StatusSuccess, Message: "processing done", OutputPath: "/out/result.mp4"},
		Artifact:      SampleVideo,
	}

	router := gin.New()
	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{Status: "healthy"})
	})
	router.POST("/check-file", f.checkFile)
	router.POST("/upload-video", f.uploadVideo)
	router.POST("/process-video", f.processVideo)
	router.GET("/out/:name", f.download)

	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeEditService) URL() string {
	return f.Server.URL
}

// MarkExisting makes the existence check report filename as present.
func (f *FakeEditService) MarkExisting(filename string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.existing[filename] = true
}

// Uploaded returns the filenames received by the upload endpoint.
func (f *FakeEditService) Uploaded() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.uploaded...)
}

// Instructions returns the instructions received by the process endpoint.
func (f *FakeEditService) Instructions() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.instructions...)
}

func (f *FakeEditService) checkFile(c *gin.Context) {
	f.CheckCalls.Add(1)
	if f.CheckFails {
		c.String(http.StatusInternalServerError, "check unavailable")
		return
	}
	var req model.CheckFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	f.mutex.Lock()
	exists := f.existing[req.Filename]
	f.mutex.Unlock()
	c.JSON(http.StatusOK, model.CheckFileResponse{Status: model.StatusSuccess, Exists: exists})
}

func (f *FakeEditService) uploadVideo(c *gin.Context) {
	f.UploadCalls.Add(1)
	header, err := c.FormFile("video")
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if f.UploadStatus != 0 && f.UploadStatus != http.StatusOK {
		c.String(f.UploadStatus, "upload rejected")
		return
	}
	f.mutex.Lock()
	f.uploaded = append(f.uploaded, header.Filename)
	f.existing[header.Filename] = true
	f.mutex.Unlock()
	c.JSON(http.StatusOK, model.UploadResponse{Status: model.StatusSuccess, Message: "uploaded"})
}

func (f *FakeEditService) processVideo(c *gin.Context) {
	f.ProcessCalls.Add(1)
	if _, err := c.FormFile("video"); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	f.mutex.Lock()
	f.instructions = append(f.instructions, c.PostForm("instruction"))
	f.mutex.Unlock()

	if f.ProcessGate != nil {
		if f.ProcessStarted != nil {
			f.ProcessStarted <- struct{}{}
		}
		<-f.ProcessGate
	}

	status := f.ProcessStatus
	if status == 0 {
		status = http.StatusOK
	}
	if f.ProcessBody != "" {
		c.Data(status, "application/json", []byte(f.ProcessBody))
		return
	}
	c.JSON(status, f.ProcessResult)
}

func (f *FakeEditService) download(c *gin.Context) {
	f.DownloadCalls.Add(1)
	c.Data(http.StatusOK, "video/mp4", f.Artifact)
}
