package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type authContextKey string

type authInfo struct {
	UserID int
	Email  string
}

const contextKeyAuth authContextKey = "placefinder-auth-info"

// requireAuth ensures the request has a valid bearer token before invoking
// the handler. Missing, malformed and expired tokens all answer 401 before
// the handler runs.
func (r *Router) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, err := bearerToken(req.Header.Get("Authorization"))
		if err != nil {
			r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		user, claims, err := r.auth.Authorize(req.Context(), token)
		if err != nil {
			r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		info := authInfo{UserID: user.ID, Email: claims.Email}
		ctx := context.WithValue(req.Context(), contextKeyAuth, info)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// authInfoFromContext extracts auth metadata from context.
func authInfoFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(contextKeyAuth)
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	return info, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
