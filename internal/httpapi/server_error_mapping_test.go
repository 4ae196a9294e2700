package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"sttd/internal/engine"
)

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestTranscriptionErrorMaps500WithMessage(t *testing.T) {
	svc := &mockTranscriber{err: &engine.TranscriptionError{Msg: "whisper-cli failed: unsupported audio format"}}
	r := NewMux(svc)
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decodeError(t, w); got != "whisper-cli failed: unsupported audio format" {
		t.Fatalf("error=%q", got)
	}
}

func TestGenericErrorMaps500(t *testing.T) {
	svc := &mockTranscriber{err: errors.New("disk exploded")}
	r := NewMux(svc)
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	if got := decodeError(t, w); got != "disk exploded" {
		t.Fatalf("error=%q", got)
	}
}

func TestHTTPErrorStatusCodeRespected(t *testing.T) {
	svc := &mockTranscriber{err: mockHTTPError{msg: "slow down", code: http.StatusTooManyRequests}}
	r := NewMux(svc)
	w := postTranscribe(t, r, `{"audio_path":`+strconv.Quote(tempAudioFile(t))+`}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
}
