package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, hWebhook *WebhookHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", secretHeader},
	}))

	RegisterRoutes(r, h, hWebhook)
	return r
}

func RegisterRoutes(r chi.Router, h *Handler, hWebhook *WebhookHandler) {
	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		// --- health / диагностика ---
		pr.Get("/", h.Health)
		pr.Get("/env", h.Env)
		pr.Method(http.MethodGet, "/metrics", promhttp.Handler())

		// --- telegram ---
		pr.Post("/webhook", hWebhook.Handle)
	})
}
