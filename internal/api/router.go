package api

import (
	"net/http"

	"github.com/notemate/notemate/internal/auth"
	"github.com/notemate/notemate/internal/obs"
	"github.com/notemate/notemate/internal/ratelimit"
)

// NewRouter assembles the full HTTP handler: routes under /api, bearer auth
// on /api/auth and /api/notes, per-user rate limiting on mutations, request
// correlation and access logging on everything.
func NewRouter(h *Handler, tokens *auth.TokenService, limiter *ratelimit.RateLimiter) http.Handler {
	requireAuth := auth.RequireAuth(tokens)
	rateLimited := ratelimit.RateLimitMiddleware(limiter, auth.UserIDFromRequest(tokens))

	authed := func(handler http.HandlerFunc) http.Handler {
		return requireAuth(handler)
	}
	mutating := func(handler http.HandlerFunc) http.Handler {
		return rateLimited(requireAuth(handler))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api", h.Health)
	mux.HandleFunc("GET /api/{$}", h.Health)

	mux.HandleFunc("POST /api/users/signup", h.Signup)
	mux.HandleFunc("POST /api/users/login", h.Login)

	mux.Handle("GET /api/auth", authed(h.Me))

	mux.Handle("GET /api/notes/all", authed(h.ListNotes))
	mux.Handle("POST /api/notes", mutating(h.CreateNote))
	mux.Handle("GET /api/notes/{id}", authed(h.GetNote))
	mux.Handle("GET /api/notes/{id}/html", authed(h.GetNoteHTML))
	mux.Handle("PATCH /api/notes", mutating(h.UpdateNote))
	mux.Handle("DELETE /api/notes", mutating(h.DeleteNote))
	mux.Handle("POST /api/notes/export", mutating(h.ExportNotes))
	mux.Handle("GET /api/notes/exports", authed(h.ListExports))

	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("api", mux))
}
