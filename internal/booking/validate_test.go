package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIntake() *Intake {
	return &Intake{
		ServiceID:    "svc-1",
		ServiceTitle: "Logo design",
		FullName:     "Ada Lovelace",
		Phone:        "+1 (555) 123-4567",
		Requirements: "Minimal wordmark, two revisions",
	}
}

func hasDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}

func TestValidateIntake_Valid(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.Empty(t, v.ValidateIntake(validIntake()))
}

func TestValidateIntake_PhoneDigitRange(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cases := []struct {
		phone   string
		violate bool
	}{
		{"12345", true},              // 5 digits
		{"123456", true},             // 6 digits
		{"1234567", false},           // 7 digits, lower bound
		{"+1 (555) 123-4567", false}, // formatting stripped
		{"123456789012345", false},   // 15 digits, upper bound
		{"1234567890123456", true},   // 16 digits
		{"no digits here", true},
	}
	for _, c := range cases {
		in := validIntake()
		in.Phone = c.phone
		details := v.ValidateIntake(in)
		if c.violate {
			assert.True(t, hasDetail(details, "invalid phone"), "phone %q: details %v", c.phone, details)
		} else {
			assert.False(t, hasDetail(details, "phone"), "phone %q: details %v", c.phone, details)
		}
	}
}

func TestValidateIntake_CollectsAllViolations(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	details := v.ValidateIntake(&Intake{Phone: "123", Email: "nope"})
	assert.True(t, hasDetail(details, "serviceId is required"))
	assert.True(t, hasDetail(details, "fullName is required"))
	assert.True(t, hasDetail(details, "requirements is required"))
	assert.True(t, hasDetail(details, "invalid phone"))
	assert.True(t, hasDetail(details, "invalid email"))
	assert.GreaterOrEqual(t, len(details), 5)
}

func TestValidateIntake_EmailOptional(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	in := validIntake()
	in.Email = ""
	assert.Empty(t, v.ValidateIntake(in))

	in.Email = "user@example.com"
	assert.Empty(t, v.ValidateIntake(in))

	in.Email = "user@nodot"
	assert.True(t, hasDetail(v.ValidateIntake(in), "invalid email"))
}

func TestValidateIntake_CartItemsShape(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	in := validIntake()
	in.CartItemsJSON = `[{"id":"a","title":"A","price_min":100,"quantity":2}]`
	assert.Empty(t, v.ValidateIntake(in))

	in.CartItemsJSON = `{"not":"a list"}`
	assert.True(t, hasDetail(v.ValidateIntake(in), "cartItems"))
}

func TestValidateFile(t *testing.T) {
	assert.Empty(t, ValidateFile(1024, "image/png"))
	assert.Empty(t, ValidateFile(MaxFileSize, "application/pdf"))
	assert.Empty(t, ValidateFile(10, "text/plain; charset=utf-8"))

	assert.NotEmpty(t, ValidateFile(MaxFileSize+1, "image/png"), "oversized file must be rejected")
	assert.NotEmpty(t, ValidateFile(10, "application/zip"), "disallowed type must be rejected")
}

func TestCountDigits(t *testing.T) {
	assert.Equal(t, 11, CountDigits("+1 (555) 123-4567"))
	assert.Equal(t, 0, CountDigits("abc"))
}
