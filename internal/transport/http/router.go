package http

import (
	"net/http"
	"strings"
	"time"

	"cleverspace/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	CORSOrigins string
}

func NewRouter(cfg Config, auth service.AuthService, otps service.OTPService, tokens service.TokenService, tasks service.TaskService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(100, 1*time.Minute))

	origins := strings.Split(cfg.CORSOrigins, ",")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(origins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := &authHandlers{auth: auth, otps: otps, tokens: tokens}
	r.Post("/login/", ah.login)
	r.Post("/request-otp/", ah.requestOTP)
	r.Post("/token/refresh/", ah.refreshToken)

	th := &taskHandlers{tasks: tasks}
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", th.list)
		r.Post("/", th.create)
		r.Get("/{id}/", th.get)
		r.Put("/{id}/", th.update)
		r.Delete("/{id}/", th.delete)
		r.Post("/{id}/swap-complete/", th.swapComplete)
	})

	return r
}

func originsIfSet(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
