package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"marketplace/internal/cart"
)

const (
	// MaxFiles bounds attachments per booking; files beyond the limit
	// are silently ignored, not rejected.
	MaxFiles = 5

	// MaxFileSize is the per-attachment cap.
	MaxFileSize = 10 << 20 // 10 MiB

	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// allowedFileTypes is the fixed attachment MIME allow-list.
var allowedFileTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/svg+xml":   {},
	"application/pdf": {},
	"text/plain":      {},
}

// basic local@domain.tld shape; anything stricter is the mail provider's
// problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// Intake is the multipart submission before it becomes a Booking.
type Intake struct {
	ServiceID          string `validate:"required"`
	ServiceTitle       string
	ServicePrice       string
	ProviderName       string
	FullName           string `validate:"required"`
	Phone              string `validate:"required,phone_digits"`
	Email              string `validate:"omitempty,email_basic"`
	WhatsappNumber     string
	Requirements       string `validate:"required"`
	BudgetRange        string
	DeliveryPreference string
	AdditionalNotes    string
	CartItemsJSON      string
}

// CountDigits strips non-digit characters and returns how many remain.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() (*Validator, error) {
	v := validator.New()

	if err := v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		n := CountDigits(fl.Field().String())
		return n >= minPhoneDigits && n <= maxPhoneDigits
	}); err != nil {
		return nil, fmt.Errorf("register phone_digits: %w", err)
	}

	if err := v.RegisterValidation("email_basic", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register email_basic: %w", err)
	}

	return &Validator{validate: v}, nil
}

// ValidateIntake collects every violation before rejecting; the caller
// gets the complete list in one response, never just the first failure.
func (v *Validator) ValidateIntake(in *Intake) []string {
	var details []string

	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details = append(details, intakeMessage(fe.Field(), fe.Tag()))
			}
		} else {
			details = append(details, "invalid submission")
		}
	}

	if strings.TrimSpace(in.CartItemsJSON) != "" {
		if _, err := ParseCartItems(in.CartItemsJSON); err != nil {
			details = append(details, "cartItems must be a valid JSON array of cart items")
		}
	}

	return details
}

func intakeMessage(field, tag string) string {
	switch field {
	case "ServiceID":
		return "serviceId is required"
	case "FullName":
		return "fullName is required"
	case "Phone":
		if tag == "required" {
			return "phone is required"
		}
		return fmt.Sprintf("invalid phone: must contain %d-%d digits", minPhoneDigits, maxPhoneDigits)
	case "Email":
		return "invalid email address"
	case "Requirements":
		return "requirements is required"
	default:
		return fmt.Sprintf("invalid field: %s", field)
	}
}

// ParseCartItems checks the submitted snapshot for shape. The raw blob
// is what gets persisted; this only guards against garbage.
func ParseCartItems(raw string) ([]cart.Item, error) {
	var items []cart.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("malformed cart items: %w", err)
	}
	return items, nil
}

// ValidateFile returns an empty string for an acceptable attachment, or
// the reason it must be recorded without a stored path.
func ValidateFile(size int64, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if _, ok := allowedFileTypes[ct]; !ok {
		return fmt.Sprintf("file type %q is not allowed", contentType)
	}
	if size > MaxFileSize {
		return "file exceeds the 10 MiB limit"
	}
	return ""
}
