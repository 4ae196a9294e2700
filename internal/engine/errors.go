package engine

import "errors"

// LoadError reports a failure to resolve or load a model at startup.
// The process must not begin serving after one of these.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoad reports whether err indicates a model load failure.
func IsLoad(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// TranscriptionError wraps any failure inside the inference path so the
// HTTP layer can surface it as a 500 while the process keeps serving.
// Msg is the human-readable message returned to the caller verbatim.
type TranscriptionError struct {
	Msg string
	Err error
}

func (e *TranscriptionError) Error() string { return e.Msg }

func (e *TranscriptionError) Unwrap() error { return e.Err }

// IsTranscription reports whether err came from the inference path.
func IsTranscription(err error) bool {
	var te *TranscriptionError
	return errors.As(err, &te)
}
