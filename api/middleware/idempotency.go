package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/horologiq/horologiq-backend/api/responses"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

const idempotencyHeader = "Idempotency-Key"

// RequireIdempotencyKey rejects requests missing the Idempotency-Key header
// and stashes its value in the context. Routes guarded by this middleware are
// the ones whose double submission creates real-world side effects; the
// reservation itself happens at the service layer via redis SetNX.
func RequireIdempotencyKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdempotencyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
