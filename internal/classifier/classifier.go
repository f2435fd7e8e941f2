// Package classifier maps raw scan input to the reputation provider lookup
// kind. Classification is pattern-based and order-dependent: the first
// matching pattern wins, so a 64-char hex token that also parses as a
// domain-like string is still routed by whichever pattern is tested first.
package classifier

import (
	"errors"
	"regexp"
	"strings"
)

// Kind is the inferred type of a scan input.
type Kind string

const (
	KindURL    Kind = "URL"
	KindHash   Kind = "Hash"
	KindDomain Kind = "Domain"
	KindIP     Kind = "IP Address"

	// KindFile is assigned to uploads directly; file content never goes
	// through text classification.
	KindFile Kind = "File"
)

// ErrInvalidInput is returned for empty input or input matching no pattern.
var ErrInvalidInput = errors.New("invalid input type")

// Precedence is fixed: URL before Hash before Domain before IP. The provider
// endpoint chosen downstream depends on this order, so do not reorder.
var (
	urlPattern    = regexp.MustCompile(`^(https?://)?([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(/.*)?(\?.*)?$`)
	hashPattern   = regexp.MustCompile(`^[a-fA-F0-9]{32}$|^[a-fA-F0-9]{40}$|^[a-fA-F0-9]{64}$`)
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{1,61}[a-zA-Z0-9]\.[a-zA-Z]{2,}$`)
	ipPattern     = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
)

// Classify determines the Kind of a raw text input. Leading and trailing
// whitespace is ignored. Returns ErrInvalidInput when nothing matches.
func Classify(raw string) (Kind, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return "", ErrInvalidInput
	}

	switch {
	case urlPattern.MatchString(input):
		return KindURL, nil
	case hashPattern.MatchString(input):
		return KindHash, nil
	case domainPattern.MatchString(input):
		return KindDomain, nil
	case ipPattern.MatchString(input):
		return KindIP, nil
	}
	return "", ErrInvalidInput
}

// Lower returns the kind as stored and served in the inputType field,
// e.g. "url", "ip address".
func (k Kind) Lower() string {
	return strings.ToLower(string(k))
}
