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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/16pomegranates/Intelligent-Video-Target-Elimination-and-Semantic-Editing-System-for-Mobile-Devices/internal/core/model"
)

// Multipart field names understood by the edit service.
const (
	VideoFieldName       = "video"
	InstructionFieldName = "instruction"
	defaultContentType   = "application/octet-stream"
	maxErrorBodyBytes    = 4096
)

// EditServiceClient is the HTTP client of the remote edit service. The
// service is opaque: it answers existence checks, accepts uploads, runs an
// instruction against a video and serves the produced artifact.
//
// Transport failures, non-2xx answers and undecodable bodies are all
// returned as model.NetworkError values.
type EditServiceClient struct {
	config     Remote
	httpClient *http.Client
}

// NewEditServiceClient builds a client for config. When httpClient is nil a
// client is created whose transport is traced with otelhttp and rate limited
// by a QuotaAwareTransport.
func NewEditServiceClient(config Remote, httpClient *http.Client) *EditServiceClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout(),
			Transport: otelhttp.NewTransport(
				NewQuotaAwareTransport(http.DefaultTransport, config.RequestsPerSecond, config.Burst),
			),
		}
	}
	return &EditServiceClient{config: config, httpClient: httpClient}
}

// BaseURL returns the configured service root without a trailing slash.
func (c *EditServiceClient) BaseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}

// URL resolves a service relative path. Absolute http(s) URLs are returned
// unchanged, so a service that answers with full download links still works.
func (c *EditServiceClient) URL(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.BaseURL() + p
}

// HealthCheck calls the service health endpoint.
func (c *EditServiceClient) HealthCheck(ctx context.Context) (*model.HealthResponse, error) {
	const op = "health_check"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(c.config.HealthPath), nil)
	if err != nil {
		return nil, model.NetworkError(op, "failed to build request", err)
	}
	out := &model.HealthResponse{}
	if err := c.doJSON(op, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckFile asks whether filename is already stored on the service.
func (c *EditServiceClient) CheckFile(ctx context.Context, filename string) (*model.CheckFileResponse, error) {
	const op = "check_file"
	body, err := json.Marshal(&model.CheckFileRequest{Filename: filename})
	if err != nil {
		return nil, model.NetworkError(op, "failed to encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(c.config.CheckFilePath), bytes.NewReader(body))
	if err != nil {
		return nil, model.NetworkError(op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	out := &model.CheckFileResponse{}
	if err := c.doJSON(op, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadVideo sends the file at localPath under filename. A response whose
// status is not success is an error carrying the server message.
func (c *EditServiceClient) UploadVideo(ctx context.Context, localPath string, filename string) (*model.UploadResponse, error) {
	const op = "upload_video"
	req, err := c.newMultipartRequest(ctx, op, c.config.UploadPath, localPath, filename, nil)
	if err != nil {
		return nil, err
	}
	out := &model.UploadResponse{}
	if err := c.doJSON(op, req, out); err != nil {
		return nil, err
	}
	if out.Status != model.StatusSuccess {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("upload failed with status %q", out.Status)
		}
		return out, model.NetworkError(op, msg, nil)
	}
	return out, nil
}

// ProcessVideo sends the media together with the instruction. The decoded
// response is returned whatever its status; only transport, HTTP and
// decoding failures are errors, so callers can always show the server
// message.
func (c *EditServiceClient) ProcessVideo(ctx context.Context, localPath string, instruction string) (*model.ProcessResponse, error) {
	const op = "process_video"
	fields := map[string]string{InstructionFieldName: instruction}
	req, err := c.newMultipartRequest(ctx, op, c.config.ProcessPath, localPath, filepath.Base(localPath), fields)
	if err != nil {
		return nil, err
	}
	out := &model.ProcessResponse{}
	if err := c.doJSON(op, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download fetches outputPath into dest and returns the number of bytes
// written. A partially written file is removed on failure.
func (c *EditServiceClient) Download(ctx context.Context, outputPath string, dest string) (int64, error) {
	const op = "download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(outputPath), nil)
	if err != nil {
		return 0, model.NetworkError(op, "failed to build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, model.NetworkError(op, "download request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, statusError(op, resp)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, classifyFileError(op, "failed to create artifact directory", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, classifyFileError(op, "failed to create artifact file", err)
	}
	written, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dest)
		if copyErr != nil {
			return written, model.NetworkError(op, "download interrupted", copyErr)
		}
		return written, classifyFileError(op, "failed to write artifact file", closeErr)
	}
	return written, nil
}

func (c *EditServiceClient) newMultipartRequest(
	ctx context.Context,
	op string,
	endpoint string,
	localPath string,
	filename string,
	fields map[string]string) (*http.Request, error) {

	file, err := os.Open(localPath)
	if err != nil {
		return nil, classifyFileError(op, "failed to open media file", err)
	}

	contentType := SniffContentType(localPath)
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// The body is streamed so large videos are never held in memory.
	go func() {
		defer file.Close()
		err := writeMultipart(mw, file, filename, contentType, fields)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(endpoint), pr)
	if err != nil {
		_ = pr.Close()
		return nil, model.NetworkError(op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

func writeMultipart(mw *multipart.Writer, media io.Reader, filename string, contentType string, fields map[string]string) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, VideoFieldName, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, media)
	return err
}

func (c *EditServiceClient) doJSON(op string, req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NetworkError(op, "request to edit service failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NetworkError(op, "malformed response from edit service", err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	msg := fmt.Sprintf("edit service returned %d", resp.StatusCode)
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		msg = fmt.Sprintf("%s: %s", msg, trimmed)
	}
	return model.NetworkError(op, msg, nil)
}

// classifyFileError maps permission failures to PermissionError and every
// other filesystem failure to FileSystemError.
func classifyFileError(op string, msg string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return model.PermissionError(op, msg, err)
	}
	return model.FileSystemError(op, msg, err)
}

// SniffContentType returns the MIME type detected from the head of the file,
// or application/octet-stream when it cannot be determined.
func SniffContentType(localPath string) string {
	kind, err := filetype.MatchFile(localPath)
	if err != nil || kind == filetype.Unknown || kind.MIME.Value == "" {
		return defaultContentType
	}
	return kind.MIME.Value
}

// IsVideoFile reports whether the file content sniffs as a video container.
func IsVideoFile(localPath string) bool {
	f, err := os.Open(localPath)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 261)
	n, _ := io.ReadFull(f, head)
	return filetype.IsVideo(head[:n])
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
