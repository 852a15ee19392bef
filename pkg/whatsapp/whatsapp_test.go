package whatsapp

import (
	"strings"
	"testing"
)

func TestDeepLink_StripsFormatting(t *testing.T) {
	got := DeepLink("+1 (555) 123-4567", "")
	if got != "https://wa.me/15551234567" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestDeepLink_EncodesMessage(t *testing.T) {
	got := DeepLink("15551234567", "New booking request\nRef: abc")
	if !strings.HasPrefix(got, "https://wa.me/15551234567?text=") {
		t.Fatalf("unexpected url: %s", got)
	}
	if strings.Contains(got, "\n") || strings.Contains(got, " ") {
		t.Fatalf("url not fully encoded: %s", got)
	}
}

func TestDeepLink_EmptyNumber(t *testing.T) {
	if got := DeepLink("ext. only", "hi"); got != "" {
		t.Fatalf("expected empty url, got %s", got)
	}
}

func TestBookingMessage_ContainsFields(t *testing.T) {
	msg := BookingMessage("b-1", "Logo design", "Ada", "+15550001111")
	for _, want := range []string{"b-1", "Logo design", "Ada", "+15550001111"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q: %s", want, msg)
		}
	}
}
