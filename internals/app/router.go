package app

import (
	"context"
	"net/http"
	"time"

	middle "endpoint-status/internals/middleware"
	"endpoint-status/internals/modules/admin"
	"endpoint-status/internals/modules/user"
	"endpoint-status/pkg/apperror"
	"endpoint-status/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// manual runs drain every queue inside the request
const requestTimeout = 2 * time.Minute

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middle.RequestID)
	r.Use(middle.Logger(c.Logger))
	r.Use(middle.Metrics(c.Metrics))

	r.Get("/healthz", healthz(c))
	r.Method(http.MethodGet, "/metrics", c.Metrics.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.Timeout(requestTimeout))
		v1.Use(c.authMW.Handle)
		v1.Use(middle.AllowAdmin)

		v1.Mount("/", admin.Routes(c.adminHandler))
		v1.Mount("/users", user.Routes(c.userHandler))
	})

	return r
}

func healthz(c *Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := c.Ready(ctx); err != nil {
			c.Logger.Warn().Err(err).Msg("readiness check failed")
			utils.WriteError(w, http.StatusServiceUnavailable, reqID, apperror.Dependency, "dependency unavailable")
			return
		}
		utils.WriteJSON[any](w, http.StatusOK, reqID, utils.ServiceReady, nil)
	}
}
