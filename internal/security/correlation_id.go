package security

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CorrelationIDHeader carries the correlation id on requests and responses.
const CorrelationIDHeader = "X-Correlation-ID"

const maxCorrelationIDLen = 128

type ctxKey int

const correlationIDKey ctxKey = iota

// CorrelationID adopts the caller's correlation id when it is well formed
// and mints a fresh one otherwise. The id is echoed on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := inboundCorrelationID(r.Header)
		w.Header().Set(CorrelationIDHeader, cid)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), cid)))
	})
}

// WithCorrelationID returns a copy of ctx carrying cid.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey, cid)
}

// CorrelationIDFromContext returns the id stored by CorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey).(string)
	return cid
}

func inboundCorrelationID(h http.Header) string {
	cid := h.Get(CorrelationIDHeader)
	if cid == "" || len(cid) > maxCorrelationIDLen || strings.IndexFunc(cid, unprintable) >= 0 {
		return newCorrelationID()
	}
	return cid
}

func unprintable(r rune) bool { return r < '!' || r > '~' }

func newCorrelationID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
