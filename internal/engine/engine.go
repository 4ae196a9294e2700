// Package engine provides the speech-to-text inference backends. It is
// structured into small files by concern:
//
//   - engine.go: Engine interface, Config, backend selection.
//   - errors.go: error types and helpers (IsLoad, IsTranscription).
//   - whispercli.go: subprocess backend shelling out to whisper-cli.
//   - whispercpp.go: in-process whisper.cpp bindings. Enabled with
//     `-tags=whisper`; a no-CGO stub exists when the tag is not set
//     (whispercpp_stub.go).
//   - audio.go: PCM conversion for the in-process backend (tagged).
//
// An Engine is created once at startup and shared read-only for the process
// lifetime; callers serialize access themselves.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Backend names accepted by Config.Backend.
const (
	BackendWhisperCLI = "whisper-cli"
	BackendWhisperCpp = "whisper"
)

// Request describes one transcription invocation. The caller checks that
// AudioPath exists before invoking; the engine does not re-validate.
type Request struct {
	AudioPath string
	// Language overrides the engine default for this request. Empty or
	// "auto" lets the model detect the language.
	Language string
}

// Engine is a loaded, ready-to-run speech-to-text model.
type Engine interface {
	// Transcribe runs the model against the audio file at req.AudioPath and
	// returns the recognized text with surrounding whitespace stripped.
	// Silence yields an empty string, not an error. Failures are returned
	// as *TranscriptionError and never crash the process.
	Transcribe(ctx context.Context, req Request) (string, error)
	// Close releases model resources at shutdown. Best effort.
	Close() error
}

// Config carries the parameters needed to construct an engine.
type Config struct {
	// Backend selects the implementation: BackendWhisperCLI (default) or
	// BackendWhisperCpp (requires a build with -tags=whisper).
	Backend string
	// ModelPath is the resolved ggml model file on disk.
	ModelPath string
	// BinaryPath optionally pins the whisper-cli executable instead of
	// searching PATH.
	BinaryPath string
	// Language is the default language code ("auto" or empty = detect).
	Language string
	// Threads limits inference threads (0 = backend default).
	Threads int
	Log     zerolog.Logger
}

// Load resolves cfg to a ready engine. A failure here is fatal to startup:
// callers are expected to exit non-zero without serving.
func Load(cfg Config) (Engine, error) {
	switch cfg.Backend {
	case "", BackendWhisperCLI:
		return NewWhisperCLI(cfg)
	case BackendWhisperCpp:
		return NewWhisperCpp(cfg)
	default:
		return nil, &LoadError{Reason: fmt.Sprintf("unknown engine backend %q", cfg.Backend)}
	}
}
