// Package phone normalizes patient mobile numbers. Numbers arrive from
// imports, the dashboard, and the mobile app in inconsistent formats, so
// matching is done on the last ten digits rather than the full string.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// SuffixLen is how many trailing digits identify a mobile number.
const SuffixLen = 10

var ErrInvalidNumber = errors.New("invalid phone number")

// Digits strips everything but ASCII digits from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Suffix returns the last ten digits of raw, or all of its digits when fewer
// than ten are present.
func Suffix(raw string) string {
	d := Digits(raw)
	if len(d) <= SuffixLen {
		return d
	}
	return d[len(d)-SuffixLen:]
}

// Match reports whether two numbers refer to the same line, comparing their
// ten-digit suffixes.
func Match(a, b string) bool {
	sa, sb := Suffix(a), Suffix(b)
	return sa != "" && sa == sb
}

// Normalize parses raw against the default region and returns the E.164
// representation. Numbers that cannot be parsed or are not valid for any
// region return ErrInvalidNumber.
func Normalize(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidNumber
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeOrSuffix returns the E.164 form when raw parses cleanly, otherwise
// it falls back to the digit suffix so lookups still have something to match.
func NormalizeOrSuffix(raw, defaultRegion string) string {
	if e164, err := Normalize(raw, defaultRegion); err == nil {
		return e164
	}
	return Suffix(raw)
}
