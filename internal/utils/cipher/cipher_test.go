package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownValues(t *testing.T) {
	assert.Equal(t, "bcd", Encode("abc", 1, false))
	assert.Equal(t, "123", Encode("012", 1, false))
	assert.Equal(t, "ABC", Encode("XYZ", 3, false))
	assert.Equal(t, "a-b c!", Encode("a-b c!", 0, false))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"08031234567",
		"Hello, World! 123",
		"a@b.com",
		"!@#$%^&*()_+-=[]{}",
		"MixedCASE0123456789",
	}

	for _, b64 := range []bool{false, true} {
		for shift := 0; shift < 26; shift++ {
			for _, in := range inputs {
				got := Decode(Encode(in, shift, b64), shift, b64)
				require.Equal(t, in, got, "shift=%d b64=%v input=%q", shift, b64, in)
			}
		}
	}
}

func TestShiftNormalization(t *testing.T) {
	// Shifts outside [0,26) wrap to their canonical value.
	assert.Equal(t, Encode("abc123", 3, false), Encode("abc123", 29, false))
	assert.Equal(t, Encode("abc123", 23, false), Encode("abc123", -3, false))
	assert.Equal(t, "abc123", Decode(Encode("abc123", -3, true), -3, true))
}

func TestDigitsWrapModTen(t *testing.T) {
	// Digits rotate within 0-9 even when the shift exceeds 10.
	assert.Equal(t, "23456789012", Encode("90123456789", 13, false))
}

func TestDecodeInvalidBase64(t *testing.T) {
	assert.Equal(t, "not base64 !!", Decode("not base64 !!", 5, true))
}
