package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"sttd/internal/engine"
	"sttd/pkg/types"
)

type mockTranscriber struct {
	text    string
	err     error
	calls   int
	lastReq engine.Request
}

func (m *mockTranscriber) Transcribe(ctx context.Context, req engine.Request) (string, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func postTranscribe(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func tempAudioFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(p, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return p
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v (body: %s)", err, w.Body.String())
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	r := NewMux(&mockTranscriber{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body=%q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
}

func TestUnknownPathsReturn404(t *testing.T) {
	r := NewMux(&mockTranscriber{})
	cases := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/transcribe"},
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/health"},
		{http.MethodPost, "/nope"},
		{http.MethodDelete, "/transcribe"},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(c.method, c.path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: status=%d", c.method, c.path, w.Code)
		}
		if got := decodeError(t, w); got != "not found" {
			t.Fatalf("%s %s: error=%q", c.method, c.path, got)
		}
	}
}

func TestTranscribeInvalidJSON(t *testing.T) {
	r := NewMux(&mockTranscriber{})
	for _, body := range []string{"", "not-json", "{", `"`} {
		w := postTranscribe(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d", body, w.Code)
		}
		if got := decodeError(t, w); got != "invalid json" {
			t.Fatalf("body %q: error=%q", body, got)
		}
	}
}

func TestTranscribeMissingAudioPath(t *testing.T) {
	r := NewMux(&mockTranscriber{})
	for _, body := range []string{`{}`, `{"audio_path":""}`, `{"other":"x"}`} {
		w := postTranscribe(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d", body, w.Code)
		}
		if got := decodeError(t, w); got != "audio_path is required" {
			t.Fatalf("body %q: error=%q", body, got)
		}
	}
}

func TestTranscribeAudioFileNotFound(t *testing.T) {
	svc := &mockTranscriber{}
	r := NewMux(svc)
	missing := filepath.Join(t.TempDir(), "missing.wav")
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(missing)+`}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decodeError(t, w); got != "audio file not found" {
		t.Fatalf("error=%q", got)
	}
	if svc.calls != 0 {
		t.Fatalf("engine invoked for missing file")
	}
}

// A whitespace-only audio_path is present, just pointing nowhere: it fails
// the existence check, not the required check.
func TestTranscribeWhitespacePathIsNotFound(t *testing.T) {
	svc := &mockTranscriber{}
	r := NewMux(svc)
	w := postTranscribe(t, r, `{"audio_path":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decodeError(t, w); got != "audio file not found" {
		t.Fatalf("error=%q", got)
	}
	if svc.calls != 0 {
		t.Fatalf("engine invoked for whitespace path")
	}
}

func TestTranscribeSuccess(t *testing.T) {
	svc := &mockTranscriber{text: "hello world"}
	r := NewMux(svc)
	audio := tempAudioFile(t)
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(audio)+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.TranscribeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Text != "hello world" {
		t.Fatalf("text=%q", body.Text)
	}
	if svc.lastReq.AudioPath != audio {
		t.Fatalf("engine saw path %q, want %q", svc.lastReq.AudioPath, audio)
	}
}

func TestTranscribeEmptyTextIsSuccess(t *testing.T) {
	r := NewMux(&mockTranscriber{text: ""})
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"text":""}` {
		t.Fatalf("body=%q", got)
	}
}

func TestResponsesCarryExactContentLength(t *testing.T) {
	r := NewMux(&mockTranscriber{text: "hi"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	cl, err := strconv.Atoi(w.Header().Get("Content-Length"))
	if err != nil {
		t.Fatalf("content-length: %v", err)
	}
	if cl != w.Body.Len() {
		t.Fatalf("content-length=%d, body=%d", cl, w.Body.Len())
	}

	w = postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	cl, err = strconv.Atoi(w.Header().Get("Content-Length"))
	if err != nil {
		t.Fatalf("content-length: %v", err)
	}
	if cl != w.Body.Len() {
		t.Fatalf("content-length=%d, body=%d", cl, w.Body.Len())
	}
}

func TestServerSurvivesEngineError(t *testing.T) {
	svc := &mockTranscriber{err: &engine.TranscriptionError{Msg: "boom"}}
	r := NewMux(svc)
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}

	// The handler keeps serving after a failed inference.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("health after failure: status=%d", w2.Code)
	}
}
