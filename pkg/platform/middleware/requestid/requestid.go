// Package requestid assigns a correlation ID to every request so handlers,
// services, and audit events can be tied back to a single call.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"orghub/pkg/requestcontext"
)

// Header carries the request ID back to callers for support correlation.
const Header = "X-Request-Id"

// Middleware reuses an inbound X-Request-Id when present, otherwise assigns a
// fresh UUID, and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
