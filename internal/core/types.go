package core

import (
	"bytes"
	"encoding/json"
	"io"
)

// IdentityColumn is the header base name that carries a record's identity key.
const IdentityColumn = "eid"

// FieldKind is the handling strategy for a column, resolved once per column
// when the plan is built.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldGroup
	FieldAddress
	FieldBoolean
)

func (k FieldKind) String() string {
	switch k {
	case FieldGroup:
		return "group"
	case FieldAddress:
		return "address"
	case FieldBoolean:
		return "boolean"
	default:
		return "scalar"
	}
}

// AddressKind identifies the type of an address sub-record.
type AddressKind string

const (
	AddressPhone AddressKind = "phone"
	AddressEmail AddressKind = "email"
)

// ColumnSpec describes one header column. It is immutable once the plan is built.
type ColumnSpec struct {
	BaseName string
	Tags     []string
	Position int

	Kind    FieldKind
	Address AddressKind // set only when Kind == FieldAddress
}

// Plan is the parsed, positional description of the header row.
type Plan struct {
	Columns []ColumnSpec

	// identity is the index into Columns of the first eid column.
	identity int
}

// IdentityPosition returns the row position of the identity column.
func (p *Plan) IdentityPosition() int {
	return p.Columns[p.identity].Position
}

// Address is a typed, tagged contact address in canonical form.
type Address struct {
	Type    AddressKind `json:"type"`
	Tags    []string    `json:"tags"`
	Address string      `json:"address"`
}

// Record is one normalized user. Records are only created and mutated by a
// Dataset; scalar and boolean fields keep the order in which they were first set.
type Record struct {
	IdentityKey string
	Groups      []string
	Addresses   []Address

	fields map[string]any
	order  []string
}

func newRecord(key string) *Record {
	return &Record{
		IdentityKey: key,
		Groups:      []string{},
		Addresses:   []Address{},
		fields:      make(map[string]any),
	}
}

// Set stores a scalar (string) or boolean field, overwriting any previous value.
func (r *Record) Set(name string, value any) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = value
}

// Field returns the value stored under name.
func (r *Record) Field(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// FieldNames returns the stored field names in first-set order.
func (r *Record) FieldNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Scalars returns a copy of all scalar and boolean fields.
func (r *Record) Scalars() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

func (r *Record) hasGroup(g string) bool {
	for _, existing := range r.Groups {
		if existing == g {
			return true
		}
	}
	return false
}

func (r *Record) hasAddress(kind AddressKind, value string) bool {
	for _, a := range r.Addresses {
		if a.Type == kind && a.Address == value {
			return true
		}
	}
	return false
}

// reservedKeys are emitted by MarshalJSON itself; same-named scalar columns are not encoded.
var reservedKeys = map[string]bool{"groups": true, "addresses": true}

// MarshalJSON encodes the record as a flat object: groups, addresses, then
// every field in first-set order. HTML characters are left unescaped; an
// enclosing encoder must call SetEscapeHTML(false) to keep them that way.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeMember(&buf, "groups", r.Groups); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, "addresses", r.Addresses); err != nil {
		return nil, err
	}

	for _, name := range r.order {
		if reservedKeys[name] {
			continue
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, name, r.fields[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, value any) error {
	key, err := encodeJSON(name)
	if err != nil {
		return err
	}
	val, err := encodeJSON(value)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeRecords writes records as one compact JSON array without HTML escaping.
func EncodeRecords(w io.Writer, records []*Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// Rejection describes an address candidate that failed validation.
// Rejections never fail a run.
type Rejection struct {
	Line        int         `json:"line"` // 1-indexed line in the input
	IdentityKey string      `json:"eid"`
	Column      string      `json:"column"`
	Kind        AddressKind `json:"type"`
	Value       string      `json:"value"`
}

// Stats summarizes one normalization pass.
type Stats struct {
	Lines      int `json:"lines"`       // lines in the input, header included
	Rows       int `json:"rows"`        // data rows merged
	BlankLines int `json:"blank_lines"` // empty data lines skipped
	Records    int `json:"records"`
	Rejected   int `json:"rejected"`
}

// Result is the output of one normalization pass.
type Result struct {
	Records    []*Record
	Rejections []Rejection
	Stats      Stats
}
