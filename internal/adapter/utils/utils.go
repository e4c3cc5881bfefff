package utils

import (
	"net/http"

	_ "github.com/akolanti/GoIndex/cmd/indexserver/docs"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

func GetNewUUID() string {
	return uuid.New().String()
}

// NewRouter builds a fresh router with panic recovery, the swagger UI and /metrics mounted.
// RPC routes are added by the server.
func NewRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chiMiddleware.Recoverer)
	mountSwagger(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return router
}

func mountSwagger(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
