package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sttd/internal/config"
	"sttd/internal/download"
	"sttd/internal/engine"
	"sttd/internal/httpapi"
	"sttd/internal/registry"
)

const defaultPort = 8791

type options struct {
	model        string
	port         int
	preload      bool
	modelsDir    string
	engineName   string
	engineBinary string
	language     string
	threads      int
	autoDownload bool
	noProgress   bool
	logLevel     string
	metrics      bool
	corsOrigins  string
	configPath   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "sttd",
		Short:         "Local speech-to-text sidecar daemon",
		Long:          "sttd loads one speech-to-text model at startup and serves transcription\nrequests for local audio files over loopback HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFileConfig(cmd, opts)
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.model, "model", os.Getenv("STTD_MODEL"), "Model to load: catalogue name (e.g. base) or path to a ggml file (required)")
	f.IntVar(&opts.port, "port", envInt("STTD_PORT", defaultPort), "Loopback TCP port to serve on")
	f.BoolVar(&opts.preload, "preload", false, "Warm the model, print \"ready\", and exit without serving")
	f.StringVar(&opts.engineName, "engine", envOr("STTD_ENGINE", engine.BackendWhisperCLI), "Inference backend: whisper-cli or whisper (in-process, -tags=whisper builds)")
	f.StringVar(&opts.engineBinary, "engine-binary", "", "Path to the whisper-cli executable (default: search PATH)")
	f.StringVar(&opts.language, "language", envOr("STTD_LANGUAGE", "auto"), "Spoken language code, or auto to detect")
	f.IntVar(&opts.threads, "threads", 0, "Inference threads (0 = backend default)")
	f.BoolVar(&opts.autoDownload, "auto-download", false, "Fetch a missing named model from its upstream URL")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Disable the download progress bar")
	f.StringVar(&opts.logLevel, "log-level", envOr("STTD_LOG_LEVEL", "disabled"), "Diagnostic log level: disabled|error|warn|info|debug")
	f.BoolVar(&opts.metrics, "metrics", false, "Expose Prometheus metrics on GET /metrics")
	f.StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated origins allowed via CORS (empty disables CORS)")

	// Subcommands need these too.
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.modelsDir, "models-dir", envOr("STTD_MODELS_DIR", "~/.sttd/models"), "Directory holding named ggml models")
	pf.StringVar(&opts.configPath, "config", os.Getenv("STTD_CONFIG"), "Optional config file (.yaml/.json/.toml); flags take precedence")

	cmd.AddCommand(newModelsCmd(opts))
	return cmd
}

// applyFileConfig merges a config file under the flags: a file value wins
// only where the flag was left at its default.
func applyFileConfig(cmd *cobra.Command, opts *options) {
	if opts.configPath == "" {
		return
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sttd: config %s: %v (ignored)\n", opts.configPath, err)
		return
	}
	f := cmd.Flags()
	if !f.Changed("model") && opts.model == "" && cfg.Model != "" {
		opts.model = cfg.Model
	}
	if !f.Changed("port") && cfg.Port != 0 {
		opts.port = cfg.Port
	}
	if !f.Changed("models-dir") && cfg.ModelsDir != "" {
		opts.modelsDir = cfg.ModelsDir
	}
	if !f.Changed("engine") && cfg.Engine != "" {
		opts.engineName = cfg.Engine
	}
	if !f.Changed("engine-binary") && cfg.EngineBinary != "" {
		opts.engineBinary = cfg.EngineBinary
	}
	if !f.Changed("language") && cfg.Language != "" {
		opts.language = cfg.Language
	}
	if !f.Changed("threads") && cfg.Threads != 0 {
		opts.threads = cfg.Threads
	}
	if !f.Changed("auto-download") && cfg.AutoDownload {
		opts.autoDownload = true
	}
	if !f.Changed("log-level") && cfg.LogLevel != "" {
		opts.logLevel = cfg.LogLevel
	}
	if !f.Changed("metrics") && cfg.Metrics {
		opts.metrics = true
	}
	if !f.Changed("cors-origins") && len(cfg.CORSOrigins) > 0 {
		opts.corsOrigins = strings.Join(cfg.CORSOrigins, ",")
	}
}

func run(cmd *cobra.Command, opts *options) error {
	if strings.TrimSpace(opts.model) == "" {
		return fmt.Errorf("--model is required")
	}

	logger := newLogger(opts.logLevel)
	httpapi.SetLogger(logger)

	eng, err := loadEngine(cmd.Context(), opts, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.preload {
		// The host watches stdout for this token.
		fmt.Fprintln(cmd.OutOrStdout(), "ready")
		return nil
	}

	httpapi.SetMetricsEnabled(opts.metrics)
	if origins := splitCSV(opts.corsOrigins); len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins, []string{http.MethodGet, http.MethodPost}, nil)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(eng)
	// Loopback only; the daemon must never be reachable from outside the
	// local host.
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(opts.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("sttd listening")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	cancel()
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}

// loadEngine resolves the model reference, fetches the weights when allowed,
// and constructs the engine. Any error out of here is fatal to startup.
func loadEngine(ctx context.Context, opts *options, logger zerolog.Logger) (engine.Engine, error) {
	res, err := registry.Resolve(opts.model, opts.modelsDir)
	if err != nil {
		return nil, err
	}

	if res.NeedsDownload {
		if !opts.autoDownload {
			return nil, fmt.Errorf("model %q is missing at %s; pass --auto-download to fetch it", res.Name, res.Path)
		}
		logger.Info().Str("model", res.Name).Str("destination", res.Path).Msg("model not found, downloading")
		if err := download.File(ctx, download.Options{
			URL:            res.URL,
			Destination:    res.Path,
			ExpectedSHA256: res.SHA256,
			NoProgress:     opts.noProgress,
			Log:            logger,
		}); err != nil {
			return nil, fmt.Errorf("download model %q: %w", res.Name, err)
		}
	}

	eng, err := engine.Load(engine.Config{
		Backend:    opts.engineName,
		ModelPath:  res.Path,
		BinaryPath: opts.engineBinary,
		Language:   opts.language,
		Threads:    opts.threads,
		Log:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return eng, nil
}

// newLogger builds the process logger on stderr; stdout is reserved for the
// preload readiness token.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zerolog.Disabled
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// splitCSV splits a comma-separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
