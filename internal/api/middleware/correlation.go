package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderCorrelationID is the request/response header carrying the id.
const HeaderCorrelationID = "X-Correlation-ID"

type ctxKey int

const correlationIDKey ctxKey = iota

// CorrelationID tags every request with a correlation id: the caller's, if
// the header is present, otherwise a fresh UUID. The id travels on the
// request context and is echoed in the response so a delivery can be traced
// from the accepting request through the worker pool's log lines.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}

// WithCorrelationID returns a context carrying the given id. Exposed so the
// dispatcher can propagate the id onto worker pool task contexts.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID returns the id set by the middleware, or "" when the
// request did not pass through it.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
