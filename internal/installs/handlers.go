package installs

import (
	"encoding/json"
	"net/http"
	"strings"

	"marketplace/internal/api"
	"marketplace/internal/metrics"
)

var knownPlatforms = map[string]bool{
	"android": true,
	"ios":     true,
	"desktop": true,
	"web":     true,
}

type Handlers struct {
	Store Store
}

type recordRequest struct {
	Platform string `json:"platform"`
}

// Record notes that a visitor accepted the install prompt. The endpoint
// is public and fire-and-forget from the client's point of view.
func (h Handlers) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !knownPlatforms[platform] {
		platform = "unknown"
	}
	if err := h.Store.Record(r.Context(), platform, r.UserAgent()); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to record install")
		return
	}
	metrics.IncInstallEvent(platform)
	api.WriteJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

// GetStats reports install totals per platform. Admin only; the router
// guards it.
func (h Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load install stats")
		return
	}
	api.WriteJSON(w, http.StatusOK, stats)
}
