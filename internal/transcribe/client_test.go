package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample_000_300.wav")
	if err := os.WriteFile(path, []byte("RIFF fake wav payload"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestHTTPClientTranscribe(t *testing.T) {
	audioPath := writeTempAudio(t)

	var gotAuth, gotModel, gotLanguage, gotFormat, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		gotFormat = r.FormValue("response_format")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello there general kenobi","language":"en","duration":60.0}`))
	}))
	defer server.Close()

	client := NewHTTPClient("secret-key", WithBaseURL(server.URL))
	response, err := client.Transcribe(context.Background(), Request{
		FilePath: audioPath,
		Language: "en",
		Model:    "whisper-1",
	})
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model field = %q", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("language field = %q", gotLanguage)
	}
	if gotFormat != "json" {
		t.Errorf("response_format field = %q", gotFormat)
	}
	if gotFilename != "sample_000_300.wav" {
		t.Errorf("uploaded filename = %q", gotFilename)
	}
	if response.Text != "hello there general kenobi" {
		t.Errorf("response text = %q", response.Text)
	}
	if response.Language != "en" {
		t.Errorf("response language = %q", response.Language)
	}
}

func TestHTTPClientTranscribeErrorStatus(t *testing.T) {
	audioPath := writeTempAudio(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient("secret-key", WithBaseURL(server.URL))
	if _, err := client.Transcribe(context.Background(), Request{FilePath: audioPath}); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestHTTPClientTranscribeMissingKey(t *testing.T) {
	audioPath := writeTempAudio(t)
	client := NewHTTPClient("")
	if _, err := client.Transcribe(context.Background(), Request{FilePath: audioPath}); err == nil {
		t.Fatal("expected error without api key")
	}
}
