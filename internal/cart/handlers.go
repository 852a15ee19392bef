package cart

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketplace/internal/api"
)

type Handlers struct {
	Store Store
}

// owner resolves whose cart this is: the authenticated account when
// present, otherwise a client-generated id in X-Cart-ID. Anonymous
// carts ride the header so they survive reloads on the client side.
func owner(r *http.Request) string {
	if id := api.IdentityFromContext(r.Context()); id != nil {
		return "user:" + id.UserID
	}
	if anon := strings.TrimSpace(r.Header.Get("X-Cart-ID")); anon != "" {
		return "anon:" + anon
	}
	return ""
}

func (h Handlers) respond(w http.ResponseWriter, c *Cart) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"subtotal": c.Subtotal(),
	})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	own := owner(r)
	if own == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing cart identity")
		return
	}
	c, err := h.Store.Load(r.Context(), own)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.respond(w, c)
}

type putRequest struct {
	Items []Item `json:"items"`
}

// Put replaces the whole cart. Entries with quantity below one are
// dropped rather than stored.
func (h Handlers) Put(w http.ResponseWriter, r *http.Request) {
	own := owner(r)
	if own == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing cart identity")
		return
	}

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	c := &Cart{}
	for _, it := range req.Items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		c.Add(it)
	}

	if err := h.Store.Save(r.Context(), own, c); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.respond(w, c)
}

func (h Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	own := owner(r)
	if own == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing cart identity")
		return
	}

	var it Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if it.ID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing item id")
		return
	}

	c, err := h.Store.Load(r.Context(), own)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	c.Add(it)
	if err := h.Store.Save(r.Context(), own, c); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.respond(w, c)
}

// RemoveItem decrements one unit; ?all=true drops the entry outright.
func (h Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	own := owner(r)
	if own == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing cart identity")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing item id")
		return
	}

	c, err := h.Store.Load(r.Context(), own)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if r.URL.Query().Get("all") == "true" {
		c.Remove(id)
	} else {
		c.Decrement(id)
	}
	if err := h.Store.Save(r.Context(), own, c); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.respond(w, c)
}

func (h Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	own := owner(r)
	if own == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing cart identity")
		return
	}
	if err := h.Store.Clear(r.Context(), own); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
