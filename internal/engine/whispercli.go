package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// whisperCLI shells out to a whisper.cpp whisper-cli binary. The binary is
// asked for plain-text output written against a private temp base; the
// artifact is read back, trimmed, and removed on every exit path. Removal is
// best effort and never masks the transcription result or error.
type whisperCLI struct {
	executable string
	modelPath  string
	language   string
	threads    int
	tmpDir     string
	log        zerolog.Logger
}

// NewWhisperCLI locates the whisper-cli executable and validates the model
// file. The model itself is memory-mapped by the subprocess per request, so
// this constructor performs no inference.
func NewWhisperCLI(cfg Config) (Engine, error) {
	exe := strings.TrimSpace(cfg.BinaryPath)
	if exe == "" {
		exe = strings.TrimSpace(os.Getenv("STTD_WHISPER_CLI"))
	}
	if exe == "" {
		p, err := exec.LookPath(cliBinaryName())
		if err != nil {
			return nil, &LoadError{Reason: "whisper-cli not found in PATH", Err: err}
		}
		exe = p
	}
	if err := ensureExecutable(exe); err != nil {
		return nil, &LoadError{Reason: "whisper-cli not usable", Err: err}
	}
	info, err := os.Stat(cfg.ModelPath)
	if err != nil {
		return nil, &LoadError{Reason: "model file not readable", Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Reason: fmt.Sprintf("model path %s is a directory", cfg.ModelPath)}
	}
	return &whisperCLI{
		executable: exe,
		modelPath:  cfg.ModelPath,
		language:   cfg.Language,
		threads:    cfg.Threads,
		tmpDir:     os.TempDir(),
		log:        cfg.Log,
	}, nil
}

func (e *whisperCLI) Transcribe(ctx context.Context, req Request) (string, error) {
	outBase := filepath.Join(e.tmpDir, fmt.Sprintf("sttd-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"
	defer os.Remove(txtOut)

	args := []string{"-m", e.modelPath, "-f", req.AudioPath, "-nt", "-otxt", "-of", outBase}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = strings.TrimSpace(e.language)
	}
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}
	if e.threads > 0 {
		args = append(args, "-t", strconv.Itoa(e.threads))
	}

	cmd := exec.CommandContext(ctx, e.executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.log.Debug().Str("engine", e.executable).Strs("args", args).Msg("running whisper-cli")
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", &TranscriptionError{Msg: "whisper-cli failed: " + detail, Err: err}
	}

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return "", &TranscriptionError{Msg: "read transcript artifact: " + err.Error(), Err: err}
	}
	return strings.TrimSpace(string(content)), nil
}

func (e *whisperCLI) Close() error { return nil }

func cliBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
