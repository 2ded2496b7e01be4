// Package phone adapts libphonenumber to the core's PhoneParser capability.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/JonMunkholm/contacts/internal/core"
)

// ErrInvalidNumber is returned for text that parses but is not a valid number.
var ErrInvalidNumber = errors.New("invalid phone number")

// Parser validates numbers with libphonenumber metadata.
type Parser struct{}

// New returns a Parser after checking that region is one libphonenumber knows.
func New(region string) (*Parser, error) {
	if err := CheckRegion(region); err != nil {
		return nil, err
	}
	return &Parser{}, nil
}

// CheckRegion reports an error for region codes without numbering metadata.
func CheckRegion(region string) error {
	if !phonenumbers.GetSupportedRegions()[strings.ToUpper(region)] {
		return fmt.Errorf("unsupported phone region %q", region)
	}
	return nil
}

// Parse implements core.PhoneParser. The raw input is kept so that
// libphonenumber can apply region-specific carrier and trunk prefixes.
func (p *Parser) Parse(raw, region string) (core.PhoneNumber, error) {
	num, err := phonenumbers.ParseAndKeepRawInput(raw, region)
	if err != nil {
		return core.PhoneNumber{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return core.PhoneNumber{}, ErrInvalidNumber
	}
	return core.PhoneNumber{
		CountryCode:    num.GetCountryCode(),
		NationalNumber: num.GetNationalNumber(),
	}, nil
}
