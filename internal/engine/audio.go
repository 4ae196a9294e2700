//go:build whisper

package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// whisper.cpp consumes 16kHz mono float32.
const targetSampleRate = 16000

// pcmSamples converts an audio file to 16kHz mono float32 via ffmpeg. The
// raw PCM goes through a private temp artifact that is removed on every exit
// path.
func pcmSamples(ctx context.Context, audioPath string) ([]float32, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &TranscriptionError{Msg: "ffmpeg not found in PATH (required for audio conversion)", Err: err}
	}

	tmp, err := os.CreateTemp("", "sttd-*.raw")
	if err != nil {
		return nil, &TranscriptionError{Msg: "create temp file: " + err.Error(), Err: err}
	}
	rawPath := tmp.Name()
	tmp.Close()
	defer os.Remove(rawPath)

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", audioPath,
		"-ar", fmt.Sprintf("%d", targetSampleRate),
		"-ac", "1",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-y",
		rawPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &TranscriptionError{Msg: fmt.Sprintf("ffmpeg conversion failed: %v: %s", err, lastLine(out)), Err: err}
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, &TranscriptionError{Msg: "read converted audio: " + err.Error(), Err: err}
	}

	samples := make([]float32, len(raw)/2)
	for i := 0; i < len(samples); i++ {
		s := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

// lastLine picks the final line of ffmpeg's output, which carries the
// actual failure reason.
func lastLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
