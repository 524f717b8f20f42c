package middleware

import (
	"net/http"

	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
)

// MaxRequestSize caps the request body at limit bytes. Reads past the cap
// fail, which the JSON decoders report as a bad request.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.PayloadTooLarge(limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
