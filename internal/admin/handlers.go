package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"marketplace/internal/api"
	"marketplace/internal/audit"
	"marketplace/internal/booking"
	"marketplace/internal/events"
	"marketplace/internal/user"
)

// Handlers covers the operator surface: booking triage plus user
// management. The router mounts all of it behind the admin role check.
type Handlers struct {
	Bookings booking.Store
	Users    *user.Repository
	Bus      *events.Bus
	Audit    *audit.Repository // nil disables the audit trail
	Log      zerolog.Logger
}

// record writes the audit row best-effort; a failed write never fails
// the operator's request.
func (h Handlers) record(r *http.Request, action audit.Action, subjectID string, metadata any) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if id := api.IdentityFromContext(r.Context()); id != nil {
		actor = id.UserID
	}
	if err := h.Audit.Insert(r.Context(), action, subjectID, actor, metadata); err != nil {
		h.Log.Error().Err(err).Str("action", string(action)).Msg("audit write failed")
	}
}

func (h Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Bookings.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("admin list bookings failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list bookings")
		return
	}
	if list == nil {
		list = []booking.Booking{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"bookings": list})
}

func (h Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.Bookings.GetByID(r.Context(), id)
	if errors.Is(err, booking.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("booking_id", id).Msg("admin get booking failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load booking")
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a booking between the coarse states. Customers
// watching the order stream see the change without reloading.
func (h Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	status, err := booking.ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := h.Bookings.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		h.Log.Error().Err(err).Str("booking_id", id).Msg("admin update status failed")
		api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to update booking")
		return
	}

	h.Bus.Notify(id)
	h.record(r, audit.ActionBookingStatusChanged, id, map[string]any{"status": status})
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "status": status})
}

type appendTimelineRequest struct {
	Step  int    `json:"step"`
	Label string `json:"label"`
	Note  string `json:"note"`
}

// AppendTimeline records a fine-grained milestone on the booking. Step
// numbers are 1-based; the label defaults to the canonical name for
// that step when omitted.
func (h Handlers) AppendTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req appendTimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	if req.Step < 1 || req.Step > booking.StepCount {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "step must be between 1 and 7")
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = booking.StepLabels[req.Step-1]
	}

	entry := booking.TimelineEntry{
		Step:  req.Step,
		Label: label,
		At:    time.Now().UTC(),
		Note:  strings.TrimSpace(req.Note),
	}
	if err := h.Bookings.AppendTimeline(r.Context(), id, entry); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		h.Log.Error().Err(err).Str("booking_id", id).Msg("admin append timeline failed")
		api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to update booking")
		return
	}

	h.Bus.Notify(id)
	h.record(r, audit.ActionTimelineAppended, id, entry)
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

func (h Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Users.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("admin list users failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list users")
		return
	}
	if list == nil {
		list = []user.User{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"users": list})
}

type updateUserRequest struct {
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

func (h Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	if req.Role == nil && req.Active == nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "nothing to update")
		return
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if role != user.RoleUser && role != user.RoleAdmin {
			api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown role")
			return
		}
		if err := h.Users.UpdateRole(r.Context(), id, role); err != nil {
			h.Log.Error().Err(err).Str("user_id", id).Msg("admin update role failed")
			api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to update user")
			return
		}
		h.record(r, audit.ActionUserRoleChanged, id, map[string]any{"role": role})
	}
	if req.Active != nil {
		if err := h.Users.SetActive(r.Context(), id, *req.Active); err != nil {
			h.Log.Error().Err(err).Str("user_id", id).Msg("admin set active failed")
			api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to update user")
			return
		}
		h.record(r, audit.ActionUserActiveChanged, id, map[string]any{"active": *req.Active})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
