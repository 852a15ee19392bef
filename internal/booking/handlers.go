package booking

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace/internal/api"
	"marketplace/internal/cart"
	"marketplace/internal/metrics"
	"marketplace/internal/storage"
	"marketplace/pkg/whatsapp"
)

// multipart memory threshold; bigger parts spill to temp files.
const parseMemoryLimit = 16 << 20

type Handlers struct {
	Store     Store
	Blobs     storage.Store // nil when no blob store is configured
	Validator *Validator

	// AdminWhatsApp receives the deep-linked operator notification.
	AdminWhatsApp string

	Log zerolog.Logger
}

// Create accepts the multipart booking submission, validates it,
// uploads attachments best-effort, and persists exactly one booking.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	// 5 files x 10 MiB plus form fields, with headroom.
	r.Body = http.MaxBytesReader(w, r.Body, 64<<20)
	if err := r.ParseMultipartForm(parseMemoryLimit); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid multipart form")
		return
	}

	in := &Intake{
		ServiceID:          strings.TrimSpace(r.FormValue("serviceId")),
		ServiceTitle:       strings.TrimSpace(r.FormValue("serviceTitle")),
		ServicePrice:       strings.TrimSpace(r.FormValue("servicePrice")),
		ProviderName:       strings.TrimSpace(r.FormValue("providerName")),
		FullName:           strings.TrimSpace(r.FormValue("fullName")),
		Phone:              strings.TrimSpace(r.FormValue("phone")),
		Email:              strings.TrimSpace(r.FormValue("email")),
		WhatsappNumber:     strings.TrimSpace(r.FormValue("whatsappNumber")),
		Requirements:       strings.TrimSpace(r.FormValue("requirements")),
		BudgetRange:        strings.TrimSpace(r.FormValue("budgetRange")),
		DeliveryPreference: strings.TrimSpace(r.FormValue("deliveryPreference")),
		AdditionalNotes:    strings.TrimSpace(r.FormValue("additionalNotes")),
		CartItemsJSON:      r.FormValue("cartItems"),
	}

	if details := h.Validator.ValidateIntake(in); len(details) > 0 {
		api.WriteValidationError(w, details)
		return
	}

	files := intakeFiles(r.MultipartForm)
	if len(files) > 0 && h.Blobs == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "UNCONFIGURED", "file storage is not configured")
		return
	}

	id := uuid.NewString()
	attachments := h.storeFiles(r, id, files)

	var cartItems []cart.Item
	if strings.TrimSpace(in.CartItemsJSON) != "" {
		// Already shape-checked during validation; stored as submitted.
		cartItems, _ = ParseCartItems(in.CartItemsJSON)
	}

	b := &Booking{
		ID:                 id,
		FullName:           in.FullName,
		Phone:              in.Phone,
		Email:              in.Email,
		WhatsappNumber:     in.WhatsappNumber,
		ServiceID:          in.ServiceID,
		ServiceTitle:       in.ServiceTitle,
		ServicePrice:       in.ServicePrice,
		ProviderName:       in.ProviderName,
		Requirements:       in.Requirements,
		BudgetRange:        in.BudgetRange,
		DeliveryPreference: in.DeliveryPreference,
		AdditionalNotes:    in.AdditionalNotes,
		CartItems:          cartItems,
		Attachments:        attachments,
		Status:             StatusPending,
	}
	if identity := api.IdentityFromContext(r.Context()); identity != nil {
		userID := identity.UserID
		b.UserID = &userID
	}

	if err := h.Store.Create(r.Context(), b); err != nil {
		h.Log.Error().Err(err).Str("booking_id", id).Msg("booking insert failed")
		api.WriteError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "failed to create booking")
		return
	}

	metrics.IncBookingCreated()
	h.Log.Info().
		Str("booking_id", b.ID).
		Str("service_id", b.ServiceID).
		Int("attachments", len(b.Attachments)).
		Bool("authenticated", b.UserID != nil).
		Msg("booking created")

	message := whatsapp.BookingMessage(b.ID, b.ServiceTitle, b.FullName, b.Phone)
	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":          true,
		"booking":          b,
		"message":          "Booking request received",
		"adminWhatsappUrl": whatsapp.DeepLink(h.AdminWhatsApp, message),
	})
}

// intakeFiles picks the attachment parts in field order. Only
// file_0..file_4 are considered; anything else is silently ignored.
func intakeFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for i := 0; i < MaxFiles; i++ {
		headers := form.File[fmt.Sprintf("file_%d", i)]
		if len(headers) == 0 {
			continue
		}
		out = append(out, headers[0])
	}
	return out
}

// storeFiles uploads each attachment best-effort. A rejected or failed
// upload is recorded with a nil path and a reason; it never aborts the
// booking.
func (h Handlers) storeFiles(r *http.Request, bookingID string, files []*multipart.FileHeader) []Attachment {
	attachments := make([]Attachment, 0, len(files))
	for i, fh := range files {
		name := filepath.Base(fh.Filename)
		contentType := fh.Header.Get("Content-Type")

		att := Attachment{Name: name, Size: fh.Size, Type: contentType}

		if reason := ValidateFile(fh.Size, contentType); reason != "" {
			att.Error = reason
			metrics.IncBookingFileRejected("invalid")
			attachments = append(attachments, att)
			continue
		}

		path := fmt.Sprintf("bookings/%s/%d-%s", bookingID, i, name)
		if err := h.putFile(r, path, fh); err != nil {
			h.Log.Warn().Err(err).Str("booking_id", bookingID).Str("file", name).Msg("attachment upload failed")
			att.Error = "file storage unavailable"
			metrics.IncBookingFileRejected("storage")
			attachments = append(attachments, att)
			continue
		}

		att.Path = &path
		attachments = append(attachments, att)
	}
	return attachments
}

func (h Handlers) putFile(r *http.Request, path string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	if err := h.Blobs.Put(r.Context(), path, f); err != nil {
		if errors.Is(err, storage.ErrUnconfigured) {
			return err
		}
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}
