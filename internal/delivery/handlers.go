package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/gpt_relay/internal/config"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// GET / — liveness, от конфига не зависит
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeOK(w)
}

// GET /env — маскированная сводка конфига
func (h *Handler) Env(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.cfg.Summary())
}
