package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/api"
	"marketplace/internal/cart"
	"marketplace/internal/storage"
)

type filePart struct {
	field       string
	name        string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + f.field + `"; filename="` + f.name + `"`}
		hdr["Content-Type"] = []string{f.contentType}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"serviceId":    "svc-1",
		"serviceTitle": "Logo design",
		"fullName":     "Ada Lovelace",
		"phone":        "+1 (555) 123-4567",
		"requirements": "Minimal wordmark",
	}
}

func newHandlers(t *testing.T, store Store) (Handlers, *MemoryStore) {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	blobs, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	mem, _ := store.(*MemoryStore)
	return Handlers{
		Store:         store,
		Blobs:         blobs,
		Validator:     v,
		AdminWhatsApp: "15551234567",
		Log:           zerolog.Nop(),
	}, mem
}

func doCreate(h Handlers, body *bytes.Buffer, contentType string, identity *api.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", body)
	req.Header.Set("Content-Type", contentType)
	if identity != nil {
		req = req.WithContext(api.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreate_InvalidPhoneRejectedWithoutSideEffects(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)

	fields := validFields()
	fields["phone"] = "12345"
	body, ct := multipartBody(t, fields, nil)
	rec := doCreate(h, body, ct, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	found := false
	for _, d := range resp.Details {
		if strings.Contains(d, "invalid phone") {
			found = true
		}
	}
	assert.True(t, found, "details: %v", resp.Details)

	rows, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows, "no row may be persisted on validation failure")
}

func TestCreate_MixedAttachmentOutcomes(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)

	big := bytes.Repeat([]byte("x"), MaxFileSize+1)
	body, ct := multipartBody(t, validFields(), []filePart{
		{field: "file_0", name: "brief.txt", contentType: "text/plain", content: []byte("the brief")},
		{field: "file_1", name: "huge.png", contentType: "image/png", content: big},
	})
	rec := doCreate(h, body, ct, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success          bool    `json:"success"`
		Booking          Booking `json:"booking"`
		AdminWhatsappURL string  `json:"adminWhatsappUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Booking.Attachments, 2)

	ok, failed := resp.Booking.Attachments[0], resp.Booking.Attachments[1]
	require.NotNil(t, ok.Path)
	assert.Empty(t, ok.Error)
	assert.Nil(t, failed.Path)
	assert.NotEmpty(t, failed.Error)

	// The stored blob is retrievable under the recorded path.
	rc, err := h.Blobs.Open(context.Background(), *ok.Path)
	require.NoError(t, err)
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	assert.Equal(t, "the brief", string(content))

	assert.Contains(t, resp.AdminWhatsappURL, "https://wa.me/15551234567")
}

func TestCreate_FilesBeyondLimitIgnored(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)

	var files []filePart
	for _, field := range []string{"file_0", "file_1", "file_2", "file_3", "file_4", "file_5", "file_9"} {
		files = append(files, filePart{field: field, name: field + ".txt", contentType: "text/plain", content: []byte("x")})
	}
	body, ct := multipartBody(t, validFields(), files)
	rec := doCreate(h, body, ct, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Booking Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Booking.Attachments, MaxFiles)
	for _, a := range resp.Booking.Attachments {
		assert.NotEqual(t, "file_5.txt", a.Name)
		assert.NotEqual(t, "file_9.txt", a.Name)
	}
}

func TestCreate_CartSnapshotSurvivesVerbatim(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)

	fields := validFields()
	fields["cartItems"] = `[{"id":"a","title":"A","price_min":100,"quantity":2},{"id":"b","title":"B","price_min":50,"quantity":1}]`
	body, ct := multipartBody(t, fields, nil)
	rec := doCreate(h, body, ct, nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Booking Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	persisted, err := store.GetByID(context.Background(), resp.Booking.ID)
	require.NoError(t, err)
	require.Len(t, persisted.CartItems, 2)
	assert.True(t, cart.Subtotal(persisted.CartItems).Equal(decimal.NewFromInt(250)),
		"snapshot subtotal = %s", cart.Subtotal(persisted.CartItems))
}

func TestCreate_AnonymousVersusAuthenticated(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)

	body, ct := multipartBody(t, validFields(), nil)
	rec := doCreate(h, body, ct, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var anon struct {
		Booking Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	assert.Nil(t, anon.Booking.UserID)

	body, ct = multipartBody(t, validFields(), nil)
	rec = doCreate(h, body, ct, &api.Identity{UserID: "u-1", Email: "ada@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var authed struct {
		Booking Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authed))
	require.NotNil(t, authed.Booking.UserID)
	assert.Equal(t, "u-1", *authed.Booking.UserID)
}

func TestCreate_UnconfiguredStorageWithFiles(t *testing.T) {
	store := NewMemoryStore()
	h, _ := newHandlers(t, store)
	h.Blobs = nil

	body, ct := multipartBody(t, validFields(), []filePart{
		{field: "file_0", name: "a.txt", contentType: "text/plain", content: []byte("x")},
	})
	rec := doCreate(h, body, ct, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Without attachments the blob store is never touched.
	body, ct = multipartBody(t, validFields(), nil)
	rec = doCreate(h, body, ct, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
