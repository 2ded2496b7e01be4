package core

import (
	"errors"
	"reflect"
	"testing"
)

// fakePhones accepts only the numbers it knows, keyed by raw text.
type fakePhones struct {
	known   map[string]PhoneNumber
	regions []string
}

func (f *fakePhones) Parse(raw, region string) (PhoneNumber, error) {
	f.regions = append(f.regions, region)
	if num, ok := f.known[raw]; ok {
		return num, nil
	}
	return PhoneNumber{}, errors.New("not a phone number")
}

func newFakePhones() *fakePhones {
	return &fakePhones{known: map[string]PhoneNumber{
		"11987654321":      {CountryCode: 55, NationalNumber: 11987654321},
		"(11) 98765-4321":  {CountryCode: 55, NationalNumber: 11987654321},
		"+55 21 99999 888": {CountryCode: 55, NationalNumber: 2199999888},
	}}
}

func TestCanonicalize_Phone(t *testing.T) {
	phones := newFakePhones()
	c := NewCanonicalizer(phones, "BR")

	got := c.Canonicalize(AddressPhone, []string{"11987654321", "abc", "", "+55 21 99999 888"})
	want := []string{"5511987654321", "552199999888"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Canonicalize(phone) = %q, want %q", got, want)
	}
	for _, r := range phones.regions {
		if r != "BR" {
			t.Errorf("parser called with region %q, want BR", r)
		}
	}
}

func TestCanonicalize_NilParserRejectsPhones(t *testing.T) {
	c := NewCanonicalizer(nil, "BR")
	if got := c.Canonicalize(AddressPhone, []string{"11987654321"}); len(got) != 0 {
		t.Errorf("Canonicalize() = %q, want empty", got)
	}
}

func TestCanonicalize_Email(t *testing.T) {
	c := NewCanonicalizer(nil, "BR")

	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{
			name:       "embedded in text",
			candidates: []string{"contact me at a@b.com please"},
			want:       []string{"a@b.com"},
		},
		{
			name:       "no email",
			candidates: []string{"no email here"},
			want:       nil,
		},
		{
			name:       "first match only",
			candidates: []string{"x@y.com z@w.org"},
			want:       []string{"x@y.com"},
		},
		{
			name:       "domain needs a dot",
			candidates: []string{"user@localhost"},
			want:       nil,
		},
		{
			name:       "case kept",
			candidates: []string{"John.Doe@Example.COM"},
			want:       []string{"John.Doe@Example.COM"},
		},
		{
			name:       "mixed",
			candidates: []string{"bad", "ok_1@mail.example.com", ""},
			want:       []string{"ok_1@mail.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Canonicalize(AddressEmail, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Canonicalize(email, %q) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_UnknownKind(t *testing.T) {
	c := NewCanonicalizer(newFakePhones(), "BR")
	if got := c.Canonicalize("fax", []string{"11987654321", "a@b.com"}); len(got) != 0 {
		t.Errorf("Canonicalize(fax) = %q, want empty", got)
	}
}
