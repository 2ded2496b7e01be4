package core

// address.go filters and canonicalizes address candidates.
//
// Phones go through an injected PhoneParser so the region and the numbering
// library stay outside the core. A rejected candidate is dropped, never
// reported as an error.

import (
	"regexp"
	"strconv"
)

// emailPattern matches local-part@domain where domain has at least one dot.
var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._-]+@[a-z0-9._-]+\.[a-z0-9_-]+`)

// PhoneNumber is a parsed, validated phone number.
type PhoneNumber struct {
	CountryCode    int32
	NationalNumber uint64
}

// PhoneParser parses raw text as a phone number for a region. It returns an
// error when the text cannot be parsed or is not a valid number.
type PhoneParser interface {
	Parse(raw, region string) (PhoneNumber, error)
}

// Canonicalizer turns raw candidates into canonical address values.
type Canonicalizer struct {
	phones PhoneParser
	region string
}

// NewCanonicalizer returns a Canonicalizer that parses phones for region.
// A nil parser rejects every phone candidate.
func NewCanonicalizer(phones PhoneParser, region string) *Canonicalizer {
	return &Canonicalizer{phones: phones, region: region}
}

// Region returns the configured phone region.
func (c *Canonicalizer) Region() string {
	return c.region
}

// Canonicalize returns the canonical form of every accepted candidate, in
// order. Unknown kinds accept nothing.
func (c *Canonicalizer) Canonicalize(kind AddressKind, candidates []string) []string {
	out, _ := c.canonicalize(kind, candidates)
	return out
}

// canonicalize also returns the rejected candidates, in order.
func (c *Canonicalizer) canonicalize(kind AddressKind, candidates []string) (accepted, rejected []string) {
	for _, raw := range candidates {
		value, ok := c.one(kind, raw)
		if !ok {
			rejected = append(rejected, raw)
			continue
		}
		accepted = append(accepted, value)
	}
	return accepted, rejected
}

func (c *Canonicalizer) one(kind AddressKind, raw string) (string, bool) {
	switch kind {
	case AddressPhone:
		return c.phone(raw)
	case AddressEmail:
		return ExtractEmail(raw)
	default:
		return "", false
	}
}

func (c *Canonicalizer) phone(raw string) (string, bool) {
	if c.phones == nil {
		return "", false
	}
	num, err := c.phones.Parse(raw, c.region)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(int64(num.CountryCode), 10) + strconv.FormatUint(num.NationalNumber, 10), true
}

// ExtractEmail returns the first email address found in text.
func ExtractEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}
