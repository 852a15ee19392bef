package admin

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/booking"
	"marketplace/internal/events"
)

func newRouter(t *testing.T) (*booking.MemoryStore, *events.Bus, http.Handler) {
	t.Helper()
	store := booking.NewMemoryStore()
	bus := events.NewBus()
	h := Handlers{Bookings: store, Bus: bus, Log: zerolog.Nop()}

	r := chi.NewRouter()
	r.Get("/v1/admin/bookings", h.ListBookings)
	r.Get("/v1/admin/bookings/{id}", h.GetBooking)
	r.Patch("/v1/admin/bookings/{id}/status", h.UpdateStatus)
	r.Post("/v1/admin/bookings/{id}/timeline", h.AppendTimeline)
	return store, bus, r
}

func seed(t *testing.T, store *booking.MemoryStore) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &booking.Booking{
		ID: "b-1", FullName: "Ada", Phone: "1234567", Status: booking.StatusPending,
	}))
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatus_PersistsAndNotifies(t *testing.T) {
	store, bus, router := newRouter(t)
	seed(t, store)

	ch, cancel := bus.Subscribe("b-1")
	defer cancel()

	rec := do(router, http.MethodPatch, "/v1/admin/bookings/b-1/status", `{"status":"in-progress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	b, err := store.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusInProgress, b.Status)

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification")
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	store, _, router := newRouter(t)
	seed(t, store)

	rec := do(router, http.MethodPatch, "/v1/admin/bookings/b-1/status", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPatch, "/v1/admin/bookings/missing/status", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppendTimeline_DefaultsLabel(t *testing.T) {
	store, bus, router := newRouter(t)
	seed(t, store)

	ch, cancel := bus.Subscribe("b-1")
	defer cancel()

	rec := do(router, http.MethodPost, "/v1/admin/bookings/b-1/timeline", `{"step":3,"note":"payment received"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	b, err := store.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	require.Len(t, b.Timeline, 1)
	assert.Equal(t, 3, b.Timeline[0].Step)
	assert.Equal(t, booking.StepLabels[2], b.Timeline[0].Label)
	assert.Equal(t, "payment received", b.Timeline[0].Note)
	assert.False(t, b.Timeline[0].At.IsZero())

	select {
	case <-ch:
	default:
		t.Fatal("expected a change notification")
	}
}

func TestAppendTimeline_RejectsOutOfRangeStep(t *testing.T) {
	store, _, router := newRouter(t)
	seed(t, store)

	for _, body := range []string{`{"step":0}`, `{"step":8}`} {
		rec := do(router, http.MethodPost, "/v1/admin/bookings/b-1/timeline", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestListAndGet(t *testing.T) {
	store, _, router := newRouter(t)
	seed(t, store)

	rec := do(router, http.MethodGet, "/v1/admin/bookings", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/v1/admin/bookings/b-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/v1/admin/bookings/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
