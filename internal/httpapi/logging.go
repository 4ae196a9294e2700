package httpapi

import "github.com/rs/zerolog"

// zlog is the structured logger used by the HTTP layer. It starts disabled:
// the serving contract suppresses request logging unless the operator raises
// the level explicitly.
var zlog = zerolog.Nop()

// SetLogger installs the logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }
