package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldPrefixesName(t *testing.T) {
	v := Field("pin", Required(), DigitsOnly(), LengthBetween(4, 8))

	assert.NoError(t, v("1234"))
	assert.EqualError(t, v(""), "pin: this field is required")
	assert.EqualError(t, v("12a4"), "pin: must contain only digits")
	assert.EqualError(t, v("123"), "pin: must be at least 4 characters")
	assert.EqualError(t, v("123456789"), "pin: must be no more than 8 characters")
}

func TestHTTPURL(t *testing.T) {
	v := HTTPURL()

	assert.NoError(t, v("https://www.youtube.com/watch?v=abc"))
	assert.NoError(t, v("http://example.com/karaoke"))
	assert.Error(t, v("ftp://example.com/file"))
	assert.Error(t, v("not a url"))
	assert.Error(t, v("/relative/path"))
}

func TestOneOf(t *testing.T) {
	v := OneOf("pending", "approved")

	assert.NoError(t, v("approved"))
	assert.EqualError(t, v("played"), "must be one of: pending, approved")
}
