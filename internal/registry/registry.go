// Package registry maps model identifiers to ggml model files on disk.
// A model reference is either a catalogue name (tiny, base, ...) resolved
// under the models directory, or a direct path to a ggml file.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sttd/internal/common/fsutil"
)

// Model describes a named entry in the built-in catalogue.
type Model struct {
	Name     string
	FileName string
	URL      string
	SHA256   string
}

var catalogue = map[string]Model{
	"tiny": {
		Name:     "tiny",
		FileName: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		SHA256:   "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21",
	},
	"base": {
		Name:     "base",
		FileName: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		SHA256:   "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe",
	},
	"small": {
		Name:     "small",
		FileName: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SHA256:   "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b",
	},
	"medium": {
		Name:     "medium",
		FileName: "ggml-medium.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SHA256:   "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208",
	},
	"large-v3": {
		Name:     "large-v3",
		FileName: "ggml-large-v3.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SHA256:   "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2",
	},
}

// Names lists the catalogue model names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (Model, bool) {
	m, ok := catalogue[name]
	return m, ok
}

// Resolved is a model reference mapped to a concrete file on disk.
type Resolved struct {
	Name          string
	Path          string
	URL           string
	SHA256        string
	NeedsDownload bool
	IsCustomPath  bool
}

// Resolve maps a model reference to a file under modelsDir. Named models
// that are not present on disk come back with NeedsDownload set; whether a
// missing file is fetched or fatal is the caller's decision.
func Resolve(modelRef, modelsDir string) (Resolved, error) {
	modelRef = strings.TrimSpace(modelRef)
	if modelRef == "" {
		return Resolved{}, errors.New("model is required")
	}

	if model, ok := Lookup(modelRef); ok {
		dir, err := fsutil.ExpandHome(strings.TrimSpace(modelsDir))
		if err != nil {
			return Resolved{}, err
		}
		if dir == "" {
			return Resolved{}, errors.New("models directory must not be empty for a named model")
		}
		modelPath := filepath.Join(dir, model.FileName)
		_, statErr := os.Stat(modelPath)
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("stat model path: %w", statErr)
		}
		return Resolved{
			Name:          model.Name,
			Path:          modelPath,
			URL:           model.URL,
			SHA256:        model.SHA256,
			NeedsDownload: errors.Is(statErr, os.ErrNotExist),
		}, nil
	}

	if !looksLikePath(modelRef) {
		return Resolved{}, fmt.Errorf("unknown model %q (known models: %s)", modelRef, strings.Join(Names(), ", "))
	}

	customPath, err := fsutil.ExpandHome(modelRef)
	if err != nil {
		return Resolved{}, err
	}
	customPath = filepath.Clean(customPath)
	if _, err := os.Stat(customPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("model path does not exist: %s", customPath)
		}
		return Resolved{}, fmt.Errorf("stat model path: %w", err)
	}
	return Resolved{
		Name:         filepath.Base(customPath),
		Path:         customPath,
		IsCustomPath: true,
	}, nil
}

// ScanDir lists ggml model files already present in dir.
func ScanDir(dir string) ([]Resolved, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []Resolved
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".bin") {
			continue
		}
		models = append(models, Resolved{Name: name, Path: filepath.Join(abs, name)})
	}
	return models, nil
}

func looksLikePath(input string) bool {
	return strings.ContainsRune(input, os.PathSeparator) || strings.HasSuffix(strings.ToLower(input), ".bin")
}
