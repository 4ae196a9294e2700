package types

// TranscribeRequest is the payload accepted by POST /transcribe.
type TranscribeRequest struct {
	// Path to an audio file on the local filesystem, absolute or relative
	// to the daemon's working directory. The file must already exist; the
	// daemon never receives audio bytes over the wire.
	// example: /tmp/sample.wav
	AudioPath string `json:"audio_path"`
}

// TranscribeResponse is returned on a successful transcription. Text is the
// recognized text with leading/trailing whitespace stripped; silence yields
// an empty string.
type TranscribeResponse struct {
	// example: hello world
	Text string `json:"text"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: ok
	Status string `json:"status"`
}

// ErrorResponse is the single error payload shape used by every failure.
type ErrorResponse struct {
	// example: audio file not found
	Error string `json:"error"`
}
