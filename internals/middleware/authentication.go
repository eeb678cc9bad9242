package middle

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"endpoint-status/internals/security"
	"endpoint-status/pkg/apperror"
	"endpoint-status/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

type userCtxKeyType struct{}

var userCtxKey = userCtxKeyType{}

type AuthenticatedUser struct {
	Subject string
	Role    string
}

type TokenValidator interface {
	ValidateAccessToken(token string) (*security.RequestClaims, error)
}

type AuthMiddleware struct {
	tokenSvc TokenValidator
}

func NewAuthMiddleware(tokenSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: tokenSvc,
	}
}

// Handle validates the bearer token and stores the caller in the context.
func (a *AuthMiddleware) Handle(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)

		token, err := extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, err.Error())
			return
		}

		claims, err := a.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			utils.FromAppError(w, reqID, err)
			return
		}

		if claims.Subject == "" {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "user is unauthorised")
			return
		}

		authUser := &AuthenticatedUser{
			Subject: claims.Subject,
			Role:    claims.Role,
		}

		newCtx := context.WithValue(ctx, userCtxKey, authUser)
		next.ServeHTTP(w, r.WithContext(newCtx))
	}

	return http.HandlerFunc(fn)
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header")
	}

	return parts[1], nil
}

func UserFromContext(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(userCtxKey).(*AuthenticatedUser)
	return user, ok
}
