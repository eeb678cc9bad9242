package middle

import (
	"net/http"

	"endpoint-status/internals/security"
	"endpoint-status/pkg/apperror"
	"endpoint-status/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

func AllowAdmin(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)
		user, ok := UserFromContext(ctx)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "user is unauthorised")
			return
		}

		if user.Role != security.RoleAdmin {
			utils.WriteError(w, http.StatusForbidden, reqID, apperror.Forbidden, "user do not have access")
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
