package httpapi

import "context"

// serverBaseCtx is the process-level context inference runs under. It is
// canceled on shutdown, never per request: a hung inference stalls the
// service rather than being silently dropped on client disconnect.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}
