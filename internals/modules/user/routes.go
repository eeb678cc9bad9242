package user

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Put("/", h.UpsertProfile)
	r.Get("/{email}", h.GetProfile)

	return r
}

/*
- PUT: /users -> create or update a recipient profile
	body : UpsertProfileRequest
	resp : ProfileResponse

- GET: /users/{email} -> recipient profile
	resp : ProfileResponse
*/
