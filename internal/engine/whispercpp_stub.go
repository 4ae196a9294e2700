//go:build !whisper

package engine

// NewWhisperCpp is a stub when built without -tags=whisper.
func NewWhisperCpp(cfg Config) (Engine, error) {
	return nil, &LoadError{Reason: `engine "whisper" requires a build with -tags=whisper`}
}
