// Package whatsapp builds wa.me deep links. There is no API call and no
// delivery guarantee; the returned URL is handed to the caller to open.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// DigitsOnly strips everything but 0-9 from a phone-ish string.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// DeepLink returns a wa.me URL that opens a chat with the given number
// and a prefilled message. The number is reduced to digits; an empty
// number yields an empty URL.
func DeepLink(number, message string) string {
	digits := DigitsOnly(number)
	if digits == "" {
		return ""
	}
	u := "https://wa.me/" + digits
	if message != "" {
		u += "?text=" + url.QueryEscape(message)
	}
	return u
}

// BookingMessage formats the operator notification for a new booking.
func BookingMessage(bookingID, serviceTitle, fullName, phone string) string {
	var b strings.Builder
	b.WriteString("New booking request\n")
	fmt.Fprintf(&b, "Ref: %s\n", bookingID)
	fmt.Fprintf(&b, "Service: %s\n", serviceTitle)
	fmt.Fprintf(&b, "Client: %s\n", fullName)
	fmt.Fprintf(&b, "Phone: %s", phone)
	return b.String()
}
