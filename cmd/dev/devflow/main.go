// Command devflow exercises the booking intake end to end against a
// locally running API: it submits a multipart booking (optionally with a
// sample attachment), prints the created booking, and can promote a user
// to admin directly in the database for follow-up testing.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"marketplace/pkg/config"
	"marketplace/pkg/db"
)

func main() {
	var (
		baseURL      = flag.String("base-url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		fullName     = flag.String("name", "Dev Tester", "customer full name")
		phone        = flag.String("phone", "+15551230000", "customer phone")
		email        = flag.String("email", "dev@example.com", "customer email")
		serviceID    = flag.String("service-id", "svc-dev-1", "service id snapshot")
		serviceTitle = flag.String("service-title", "Logo Design", "service title snapshot")
		requirements = flag.String("requirements", "Dev smoke booking, please ignore.", "requirements text")
		attach       = flag.String("attach", "", "path of a file to attach (optional)")
		promoteEmail = flag.String("promote-admin", "", "promote the user with this email to admin (writes to DB directly)")
	)
	flag.Parse()

	cfg := config.Load()

	if *promoteEmail != "" {
		promoteAdmin(cfg, *promoteEmail)
		return
	}

	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"fullName":     *fullName,
		"phone":        *phone,
		"email":        *email,
		"serviceId":    *serviceID,
		"serviceTitle": *serviceTitle,
		"requirements": *requirements,
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if *attach != "" {
		f, err := os.Open(*attach)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open attachment: %v\n", err)
			os.Exit(1)
		}
		part, _ := mw.CreateFormFile("file_0", f.Name())
		if _, err := io.Copy(part, f); err != nil {
			fmt.Fprintf(os.Stderr, "copy attachment: %v\n", err)
			os.Exit(1)
		}
		f.Close()
	}
	if err := mw.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close multipart: %v\n", err)
		os.Exit(1)
	}

	url := strings.TrimRight(*baseURL, "/") + "/v1/bookings"
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := (&http.Client{Timeout: 30 * time.Second}).Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post booking: %v\n", err)
		fmt.Fprintf(os.Stderr, "tip: is the API running, and is HTTP_ADDR set correctly? url=%s\n", url)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		fmt.Fprintf(os.Stderr, "booking status=%d body=%s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}

	var out struct {
		Booking struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
		AdminWhatsappURL string `json:"adminWhatsappUrl"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\nbody=%s\n", err, string(b))
		os.Exit(1)
	}

	fmt.Printf("Booking created.\n")
	fmt.Printf("booking_id=%s status=%s\n", out.Booking.ID, out.Booking.Status)
	fmt.Printf("admin_whatsapp_url=%s\n", out.AdminWhatsappURL)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("- Sign in, then watch the order stream:\n")
	fmt.Printf("  GET %s/v1/orders/%s/events (Authorization: Bearer <token>)\n", *baseURL, out.Booking.ID)
	fmt.Printf("- Move it along as an operator:\n")
	fmt.Printf("  PATCH %s/v1/admin/bookings/%s/status {\"status\":\"confirmed\"}\n", *baseURL, out.Booking.ID)
}

func promoteAdmin(cfg config.Config, email string) {
	ctx := context.Background()
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx, `UPDATE users SET role='admin', updated_at=NOW() WHERE lower(email)=lower($1)`, email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "promote: %v\n", err)
		os.Exit(1)
	}
	if tag.RowsAffected() == 0 {
		fmt.Fprintf(os.Stderr, "no user with email %s; sign up first\n", email)
		os.Exit(1)
	}
	fmt.Printf("%s is now an admin\n", email)
}

func defaultBaseURL(httpAddr string) string {
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "http://localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr
}
