package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/web/middleware"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for service
// logging. RemoteAddr has already been rewritten by TrustedRealIP.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithClient(ctx, middleware.ClientIP(r), r.UserAgent())
}
