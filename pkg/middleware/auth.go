package middleware

import (
	"context"
	"net/http"
	"strings"

	"servimarket/pkg/auth"
	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const userKey contextKey = "user"

// IdentitySource reports the identity currently signed in, or nil.
type IdentitySource interface {
	User() *model.Identity
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Guard wraps a route that needs a signed-in user.
type Guard func(httprouter.Handle) httprouter.Handle

// RequireSession only lets a request through while someone is signed in. A
// bearer token is optional, but when one is sent it must verify and belong
// to the signed-in user. The identity is stored on the request context.
func RequireSession(source IdentitySource, tokens TokenParser, log *logger.Logger) Guard {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			user := source.User()
			if user == nil {
				rejectUnauthorized(w, log, r, "no active session")
				return
			}

			if header := r.Header.Get("Authorization"); header != "" && tokens != nil {
				if !strings.HasPrefix(header, "Bearer ") {
					rejectUnauthorized(w, log, r, "malformed authorization header")
					return
				}
				claims, err := tokens.Parse(header)
				if err != nil {
					rejectUnauthorized(w, log, r, "invalid access token")
					return
				}
				if claims.UserID != user.ID {
					rejectUnauthorized(w, log, r, "access token belongs to another user")
					return
				}
			}

			next(w, r.WithContext(WithUser(r.Context(), *user)), ps)
		}
	}
}

// WithUser stores the identity on ctx.
func WithUser(ctx context.Context, user model.Identity) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the identity stored by RequireSession.
func UserFrom(ctx context.Context) (model.Identity, bool) {
	user, ok := ctx.Value(userKey).(model.Identity)
	return user, ok
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Unauthorized request",
		"request_id", RequestIDFrom(r.Context()),
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
	)

	_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
}
