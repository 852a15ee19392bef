package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"marketplace/internal/api"
	"marketplace/internal/booking"
	"marketplace/internal/events"
	"marketplace/internal/storage"
)

type Handlers struct {
	Bookings booking.Store
	Blobs    storage.Store
	Signer   *storage.Signer
	Bus      *events.Bus

	// PublicBaseURL prefixes issued download URLs.
	PublicBaseURL string

	Log zerolog.Logger
}

// resolve applies the identity resolution policy: authenticated id
// first, email second, reject otherwise. A miss on both is a plain
// not-found; existence never leaks.
func (h Handlers) resolve(r *http.Request, bookingID string) (*booking.Booking, error) {
	ident := api.IdentityFromContext(r.Context())
	if ident == nil {
		return nil, booking.ErrNotFound
	}

	if ident.UserID != "" {
		b, err := h.Bookings.GetForUser(r.Context(), bookingID, ident.UserID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, booking.ErrNotFound) {
			return nil, err
		}
	}

	// Bookings created before sign-in, or anonymously under an email,
	// fall back to email equality.
	if ident.Email != "" {
		return h.Bookings.GetForEmail(r.Context(), bookingID, ident.Email)
	}
	return nil, booking.ErrNotFound
}

// Get returns the order-status projection for one booking visible to
// the caller.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	b, err := h.resolve(r, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, Project(b))
}

type signRequest struct {
	Path      string `json:"path"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

// Sign issues a time-boxed download URL for one stored attachment path.
// The path must appear in the booking's own attachment list; there is no
// separate ACL.
func (h Handlers) Sign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if req.Path == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "path is required")
		return
	}

	b, err := h.resolve(r, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	if !booking.OwnsAttachment(b, req.Path) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "attachment not found")
		return
	}

	expiry := storage.ClampExpiry(req.ExpiresIn)
	token, expiresAt, err := h.Signer.Sign(req.Path, expiry, time.Now())
	if err != nil {
		h.Log.Error().Err(err).Str("booking_id", id).Msg("attachment signing failed")
		api.WriteError(w, http.StatusInternalServerError, "SIGN_ERROR", "failed to sign download url")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"url":       fmt.Sprintf("%s/v1/files/%s", h.PublicBaseURL, token),
		"expiresAt": expiresAt,
	})
}

// Stream pushes the projection over SSE, re-reading the row after every
// change notification for this booking id. Each push is a full refresh,
// not an incremental update.
func (h Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	b, err := h.resolve(r, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(b *booking.Booking) {
		data, err := json.Marshal(Project(b))
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: projection\ndata: %s\n\n", data)
		flusher.Flush()
	}
	send(b)

	ticks, cancel := h.Bus.Subscribe(id)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticks:
			refreshed, err := h.resolve(r, id)
			if err != nil {
				// The row should still be visible; drop the tick and keep
				// the stream open for the next one.
				h.Log.Warn().Err(err).Str("booking_id", id).Msg("refresh after change notification failed")
				continue
			}
			send(refreshed)
		}
	}
}

// Download redeems a signed token and streams the blob. The token is the
// whole credential; no session is required.
func (h Handlers) Download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing token")
		return
	}

	path, err := h.Signer.Verify(token, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "download link expired or invalid")
		return
	}

	if h.Blobs == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "UNCONFIGURED", "file storage is not configured")
		return
	}
	rc, err := h.Blobs.Open(r.Context(), path)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}
