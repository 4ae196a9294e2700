package httpapi

// maxBodyBytes caps the request body size for JSON endpoints. A transcribe
// payload is one short path, so 1 MiB is generous.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes configures the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// metricsEnabled controls whether GET /metrics is mounted. Off by default:
// with it off, every path other than /health and /transcribe answers 404,
// which is the contract the host application relies on.
var metricsEnabled bool

// SetMetricsEnabled mounts or hides the Prometheus endpoint.
func SetMetricsEnabled(enabled bool) { metricsEnabled = enabled }

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
