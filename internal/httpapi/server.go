package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sttd/internal/common/fsutil"
	"sttd/internal/engine"
	"sttd/pkg/types"
)

// Transcriber is the engine surface required by the HTTP layer. The real
// implementation is an engine.Engine loaded at startup; tests substitute a
// mock.
type Transcriber interface {
	Transcribe(ctx context.Context, req engine.Request) (string, error)
}

// NewMux builds the router around a loaded model. The handler owns no model
// lifecycle: the Transcriber was constructed before serving and lives for
// the process lifetime.
func NewMux(svc Transcriber) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handler{svc: svc}
	r.Get("/health", h.health)
	r.Post("/transcribe", h.transcribe)
	if metricsEnabled {
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	}

	// Every unmatched path or method answers the same way, wrong-method
	// requests included.
	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: "not found"})
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

type handler struct {
	svc Transcriber
	// mu serializes transcription: one request runs inference at a time,
	// later callers queue. /health never takes this lock.
	mu sync.Mutex
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func (h *handler) transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "invalid json"})
		return
	}
	var req types.TranscribeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "invalid json"})
		return
	}
	if req.AudioPath == "" {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "audio_path is required"})
		return
	}
	if !fsutil.PathExists(req.AudioPath) {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "audio file not found"})
		return
	}

	start := time.Now()
	zlog.Debug().Str("audio", req.AudioPath).Str("request_id", middleware.GetReqID(r.Context())).Msg("transcribe start")

	// Inference runs under the process base context, not the request
	// context: an in-flight transcription is not cancelable by a client
	// disconnect, only by shutdown.
	h.mu.Lock()
	text, err := h.svc.Transcribe(serverBaseCtx, engine.Request{AudioPath: req.AudioPath})
	h.mu.Unlock()

	if err != nil {
		status := http.StatusInternalServerError
		if he, ok := err.(HTTPError); ok {
			status = he.StatusCode()
		}
		observeTranscription("error", time.Since(start))
		zlog.Debug().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("transcribe end")
		writeJSON(w, status, types.ErrorResponse{Error: err.Error()})
		return
	}

	observeTranscription("ok", time.Since(start))
	zlog.Debug().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("transcribe end")
	writeJSON(w, http.StatusOK, types.TranscribeResponse{Text: text})
}
