// Package phone normalizes Nigerian phone numbers and classifies them into
// mobile network operators by prefix.
package phone

import (
	"fmt"
	"sort"
	"strings"

	"referral-rewards-backend/internal/common/errors"
)

// Network is a mobile network operator classification.
type Network string

const (
	NetworkMTN     Network = "mtn"
	NetworkAirtel  Network = "airtel"
	NetworkGlo     Network = "glo"
	NetworkUnknown Network = "Unknown"
)

// prefixTable maps local-format prefixes to their operator. Longer prefixes
// (07025/07026) must win over shorter ones, so lookups scan longest-first.
var prefixTable = map[string]Network{
	"0802": NetworkAirtel, "0808": NetworkAirtel, "0708": NetworkAirtel,
	"0812": NetworkAirtel, "0701": NetworkAirtel, "0902": NetworkAirtel,
	"0901": NetworkAirtel, "0904": NetworkAirtel, "0907": NetworkAirtel,
	"0912": NetworkAirtel,

	"0803": NetworkMTN, "0806": NetworkMTN, "0703": NetworkMTN,
	"0706": NetworkMTN, "0813": NetworkMTN, "0816": NetworkMTN,
	"0810": NetworkMTN, "0814": NetworkMTN, "0903": NetworkMTN,
	"0906": NetworkMTN, "0913": NetworkMTN, "0916": NetworkMTN,
	"07025": NetworkMTN, "07026": NetworkMTN, "0704": NetworkMTN,

	"0805": NetworkGlo, "0807": NetworkGlo, "0705": NetworkGlo,
	"0815": NetworkGlo, "0811": NetworkGlo, "0905": NetworkGlo,
	"0915": NetworkGlo,
}

var sortedPrefixes = func() []string {
	out := make([]string, 0, len(prefixTable))
	for p := range prefixTable {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()

// Normalize converts international Nigerian numbers to local format and
// strips everything that is not a digit.
func Normalize(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "+234") {
		number = "0" + strings.TrimPrefix(number, "+234")
	} else if strings.HasPrefix(number, "234") && len(number) > 10 {
		number = "0" + strings.TrimPrefix(number, "234")
	}
	return digitsOnly(number)
}

// Operator classifies a number by its operator prefix. It is total: any
// unrecognized input, including the empty string, yields NetworkUnknown.
func Operator(number string) Network {
	number = Normalize(number)

	for _, prefix := range sortedPrefixes {
		if strings.HasPrefix(number, prefix) {
			return prefixTable[prefix]
		}
	}
	return NetworkUnknown
}

// commonMistakes lists prefixes that are always typos for the country code.
var commonMistakes = map[string][]string{
	"+234": {"018", "008", "019", "009", "017", "007"},
}

// Formatter cleans and validates a raw phone number against a country code.
type Formatter struct {
	cleaned     string
	countryCode string
}

// NewFormatter validates the country code, strips non-digits from the number
// and rejects known typo prefixes.
func NewFormatter(number, countryCode string) (*Formatter, error) {
	countryCode = strings.TrimSpace(countryCode)
	if !strings.HasPrefix(countryCode, "+") {
		return nil, errors.NewValidationError("country_code", "must start with '+'")
	}
	if len(countryCode) < 2 || len(countryCode) > 4 {
		return nil, errors.NewValidationError("country_code", "length must be between 2 and 4 characters after '+'")
	}

	f := &Formatter{
		cleaned:     digitsOnly(strings.TrimSpace(number)),
		countryCode: countryCode,
	}

	if len(f.cleaned) >= 3 {
		prefix := f.cleaned[:3]
		for _, mistake := range commonMistakes[countryCode] {
			if prefix == mistake {
				return nil, errors.NewValidationError("phone",
					fmt.Sprintf("'%s' is not a valid prefix for %s", prefix, countryCode))
			}
		}
	}

	return f, nil
}

// WithPrefix returns the number in international form.
func (f *Formatter) WithPrefix() (string, error) {
	formatted := f.countryCode + strings.TrimLeft(f.cleaned, "0")
	if len(formatted) > 15 {
		return "", errors.NewValidationError("phone", "must be at most 15 digits")
	}
	return formatted, nil
}

// WithoutPrefix returns the cleaned local-format number.
func (f *Formatter) WithoutPrefix() string {
	return f.cleaned
}

// IsValid reports whether the cleaned number has a plausible length.
func (f *Formatter) IsValid() bool {
	return len(f.cleaned) >= 7 && len(f.cleaned) <= 15
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
