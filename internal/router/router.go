package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user"
)

const msgNoRoute = "Route does not exist"

// Deps are the collaborators RegisterRoutes mounts. AuthLimiter and
// Metrics may be nil.
type Deps struct {
	Logger      *zap.SugaredLogger
	Prefix      string
	Guard       *auth.Guard
	Users       *user.Handler
	Jobs        *job.Handler
	AuthLimiter *RateLimiter
	Metrics     *Metrics
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	p := d.Prefix
	handle := func(fn apperror.HandlerFunc) http.Handler { return apperror.Handle(d.Logger, fn) }

	public := func(h http.Handler) http.Handler {
		if d.AuthLimiter != nil {
			return d.AuthLimiter.Handler(h)
		}
		return h
	}
	authed := d.Guard.Middleware
	writer := func(h http.Handler) http.Handler { return d.Guard.Middleware(d.Guard.BlockRestricted(h)) }

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	mux.Handle("POST "+p+"/auth/register", public(handle(d.Users.Register)))
	mux.Handle("POST "+p+"/auth/login", public(handle(d.Users.Login)))
	mux.Handle("PATCH "+p+"/auth/updateUser", writer(handle(d.Users.UpdateUser)))

	mux.Handle("GET "+p+"/jobs", authed(handle(d.Jobs.List)))
	mux.Handle("POST "+p+"/jobs", writer(handle(d.Jobs.Create)))
	mux.Handle("GET "+p+"/jobs/stats", authed(handle(d.Jobs.Stats)))
	mux.Handle("GET "+p+"/jobs/{id}", authed(handle(d.Jobs.Get)))
	mux.Handle("PATCH "+p+"/jobs/{id}", writer(handle(d.Jobs.Update)))
	mux.Handle("DELETE "+p+"/jobs/{id}", writer(handle(d.Jobs.Delete)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusNotFound, apperror.Response{Msg: msgNoRoute})
	})

	var h http.Handler = mux
	if d.Metrics != nil {
		h = d.Metrics.Instrument(h)
	}
	return LoggingMiddleware(d.Logger)(SecurityHeadersMiddleware()(h))
}
