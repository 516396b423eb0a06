package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hilthontt/encore/internal/infrastructure/validate"
)

// Credentials is the email/password pair a human name and PIN map to.
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
	Role        Role
}

var (
	validateNamePart = validate.Compose(
		validate.Required(),
		validate.MaxLength(40),
		validate.Matches(`^\p{L}[\p{L}'-]*$`, "may only contain letters, apostrophes and hyphens"),
	)
	validatePin = validate.Field("pin", validate.Required(), validate.DigitsOnly(), validate.LengthBetween(4, 8))
)

// NewCredentials builds {first}.{last}@karaoke.{role}.app and {pin}{first}{last}.
// Name parts are trimmed, lowercased and stripped of whitespace before use.
func NewCredentials(first, last, pin string, role Role) (Credentials, error) {
	if _, ok := ParseRole(string(role)); !ok {
		return Credentials{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	f := normalizeNamePart(first)
	if err := validate.Field("first name", validateNamePart)(f); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	l := normalizeNamePart(last)
	if err := validate.Field("last name", validateNamePart)(l); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	pin = strings.TrimSpace(pin)
	if err := validatePin(pin); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return Credentials{
		Email:       fmt.Sprintf("%s.%s@%s", f, l, role.EmailDomain()),
		Password:    pin + f + l,
		DisplayName: DisplayName(first, last),
		Role:        role,
	}, nil
}

// DisplayName joins the trimmed name parts with single spaces.
func DisplayName(first, last string) string {
	return strings.Join(strings.Fields(first+" "+last), " ")
}

func normalizeNamePart(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
