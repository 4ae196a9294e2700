//go:build whisper

package engine

import (
	"context"
	"io"
	"os"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"
)

// whisperCpp runs inference in-process through the whisper.cpp Go bindings.
// Requires CGO and the libwhisper toolchain, hence the build tag.
type whisperCpp struct {
	model    whisper.Model
	language string
	threads  int
	log      zerolog.Logger
}

// NewWhisperCpp loads the ggml model into memory once. The returned engine
// holds the model for the process lifetime.
func NewWhisperCpp(cfg Config) (Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, &LoadError{Reason: "model file not readable", Err: err}
	}
	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, &LoadError{Reason: "load whisper model", Err: err}
	}
	cfg.Log.Info().Str("model", cfg.ModelPath).Bool("multilingual", model.IsMultilingual()).Msg("whisper model loaded")
	return &whisperCpp{
		model:    model,
		language: cfg.Language,
		threads:  cfg.Threads,
		log:      cfg.Log,
	}, nil
}

func (e *whisperCpp) Transcribe(ctx context.Context, req Request) (string, error) {
	samples, err := pcmSamples(ctx, req.AudioPath)
	if err != nil {
		return "", err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return "", &TranscriptionError{Msg: "create whisper context: " + err.Error(), Err: err}
	}

	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = strings.TrimSpace(e.language)
	}
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			e.log.Warn().Str("language", lang).Err(err).Msg("failed to set language")
		}
	}
	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", &TranscriptionError{Msg: "whisper process: " + err.Error(), Err: err}
	}

	var text strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &TranscriptionError{Msg: "read segment: " + err.Error(), Err: err}
		}
		text.WriteString(segment.Text)
	}
	return strings.TrimSpace(text.String()), nil
}

func (e *whisperCpp) Close() error { return e.model.Close() }
