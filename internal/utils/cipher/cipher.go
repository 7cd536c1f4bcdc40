// Package cipher implements the reversible substitution cipher used to
// obfuscate phone numbers at rest. It is obfuscation, not cryptography.
package cipher

import "encoding/base64"

type mode int

const (
	encode mode = iota
	decode
)

// Encode shifts letters within their case's alphabet and digits within 0-9,
// leaving every other character untouched. When b64 is set, the shifted
// string is additionally base64-encoded.
func Encode(text string, shift int, b64 bool) string {
	out := rotate(text, shift, encode)
	if b64 {
		out = base64.StdEncoding.EncodeToString([]byte(out))
	}
	return out
}

// Decode reverses Encode with the same shift and encoding toggle. Invalid
// base64 input is returned as-is rather than failing; stored values are
// always produced by Encode.
func Decode(text string, shift int, b64 bool) string {
	if b64 {
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return text
		}
		text = string(raw)
	}
	return rotate(text, shift, decode)
}

func rotate(text string, shift int, m mode) string {
	// Normalize the shift into [0,26) so negative and oversized shifts wrap.
	shift = ((shift % 26) + 26) % 26

	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			out[i] = shiftWithin(ch, 'a', 26, shift, m)
		case ch >= 'A' && ch <= 'Z':
			out[i] = shiftWithin(ch, 'A', 26, shift, m)
		case ch >= '0' && ch <= '9':
			out[i] = shiftWithin(ch, '0', 10, shift, m)
		default:
			out[i] = ch
		}
	}
	return string(out)
}

func shiftWithin(ch, base byte, size, shift int, m mode) byte {
	offset := int(ch - base)
	if m == encode {
		offset = (offset + shift) % size
	} else {
		offset = (offset - shift + size*3) % size
	}
	return base + byte(offset)
}
