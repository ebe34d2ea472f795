package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "whisper-1"
	apiTimeout     = 10 * time.Minute
	transcribePath = "/v1/audio/transcriptions"
)

// Client transcribes an audio file into text.
type Client interface {
	Transcribe(ctx context.Context, req Request) (Response, error)
}

// Request describes one transcription call.
type Request struct {
	FilePath string
	Language string
	Model    string
}

// Response mirrors the subset of the API response the aligner needs.
type Response struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// HTTPClient calls an OpenAI-compatible audio transcription endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithBaseURL overrides the default base URL, for self-hosted
// whisper-compatible servers.
func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
		}
	}
}

// NewHTTPClient constructs a client for the transcription API.
func NewHTTPClient(apiKey string, opts ...Option) *HTTPClient {
	client := &HTTPClient{
		baseURL: defaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		http: &http.Client{
			Timeout: apiTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Transcribe uploads an audio file and returns the decoded response.
func (c *HTTPClient) Transcribe(ctx context.Context, req Request) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("transcribe client: nil client")
	}
	filePath := strings.TrimSpace(req.FilePath)
	if filePath == "" {
		return Response{}, fmt.Errorf("transcribe client: empty file path")
	}
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("transcribe client: missing api key")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = defaultModel
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe client: open audio: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", model); err != nil {
		return Response{}, fmt.Errorf("transcribe client: write model field: %w", err)
	}
	if req.Language != "" {
		if err := writer.WriteField("language", req.Language); err != nil {
			return Response{}, fmt.Errorf("transcribe client: write language field: %w", err)
		}
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return Response{}, fmt.Errorf("transcribe client: write format field: %w", err)
	}

	field, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return Response{}, fmt.Errorf("transcribe client: create file field: %w", err)
	}
	if _, err := io.Copy(field, file); err != nil {
		return Response{}, fmt.Errorf("transcribe client: copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Response{}, fmt.Errorf("transcribe client: close multipart writer: %w", err)
	}

	endpoint := c.baseURL + transcribePath
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe client: build request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(request)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe client: http request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("transcribe client: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed Response
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Response{}, fmt.Errorf("transcribe client: decode response: %w", err)
	}
	return parsed, nil
}
