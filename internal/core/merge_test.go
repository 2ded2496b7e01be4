package core

import (
	"reflect"
	"testing"
)

func mustPlan(t *testing.T, header string) *Plan {
	t.Helper()
	plan, err := BuildColumnPlan(header)
	if err != nil {
		t.Fatalf("BuildColumnPlan(%q) error = %v", header, err)
	}
	return plan
}

func TestMergeRow_SameKeyMerges(t *testing.T) {
	plan := mustPlan(t, "eid,name,group,phone home,email")
	ds := NewDataset(NewCanonicalizer(newFakePhones(), "BR"))

	ds.MergeRow(plan, SplitRow("1,Ana,g1,11987654321,"))
	ds.MergeRow(plan, SplitRow("1,Ana Maria,g2,,ana@example.com"))

	if ds.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ds.Len())
	}
	rec := ds.Records()[0]
	if rec.IdentityKey != "1" {
		t.Errorf("IdentityKey = %q, want 1", rec.IdentityKey)
	}
	if !reflect.DeepEqual(rec.Groups, []string{"g1", "g2"}) {
		t.Errorf("Groups = %q, want [g1 g2]", rec.Groups)
	}
	if name, _ := rec.Field("name"); name != "Ana Maria" {
		t.Errorf("name = %v, want later value to overwrite", name)
	}

	want := []Address{
		{Type: AddressPhone, Tags: []string{"home"}, Address: "5511987654321"},
		{Type: AddressEmail, Tags: []string{}, Address: "ana@example.com"},
	}
	if !reflect.DeepEqual(rec.Addresses, want) {
		t.Errorf("Addresses = %+v, want %+v", rec.Addresses, want)
	}
}

func TestMergeRow_Idempotent(t *testing.T) {
	plan := mustPlan(t, "eid,group,phone,email")
	ds := NewDataset(NewCanonicalizer(newFakePhones(), "BR"))

	row := SplitRow(`7,"g1/g2",11987654321,a@b.com`)
	ds.MergeRow(plan, row)
	ds.MergeRow(plan, row)

	rec := ds.Records()[0]
	if len(rec.Groups) != 2 {
		t.Errorf("Groups = %q, want 2 entries", rec.Groups)
	}
	if len(rec.Addresses) != 2 {
		t.Errorf("Addresses = %+v, want 2 entries", rec.Addresses)
	}
}

func TestMergeRow_DedupWithinCell(t *testing.T) {
	plan := mustPlan(t, "eid,phone")
	ds := NewDataset(NewCanonicalizer(newFakePhones(), "BR"))

	// Both raw forms canonicalize to the same number.
	ds.MergeRow(plan, SplitRow(`1,"11987654321/(11) 98765-4321"`))

	if got := ds.Records()[0].Addresses; len(got) != 1 {
		t.Errorf("Addresses = %+v, want one entry", got)
	}
}

func TestMergeRow_FirstTagsWin(t *testing.T) {
	plan := mustPlan(t, "eid,phone home,phone work")
	ds := NewDataset(NewCanonicalizer(newFakePhones(), "BR"))

	ds.MergeRow(plan, SplitRow("1,11987654321,11987654321"))

	got := ds.Records()[0].Addresses
	if len(got) != 1 || !reflect.DeepEqual(got[0].Tags, []string{"home"}) {
		t.Errorf("Addresses = %+v, want one address tagged home", got)
	}
}

func TestMergeRow_EmptyKeyAlwaysNew(t *testing.T) {
	plan := mustPlan(t, "name,eid")
	ds := NewDataset(NewCanonicalizer(nil, "BR"))

	ds.MergeRow(plan, SplitRow("a,"))
	ds.MergeRow(plan, SplitRow("b,"))
	ds.MergeRow(plan, SplitRow("c"))

	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ds.Len())
	}
	if _, ok := ds.Records()[2].Field("eid"); ok {
		t.Error("missing eid cell should leave eid unset")
	}
	if v, _ := ds.Records()[0].Field("eid"); v != "" {
		t.Errorf("empty eid cell = %v, want empty string", v)
	}
}

func TestMergeRow_ShortRow(t *testing.T) {
	plan := mustPlan(t, "eid,name,group,email,see_all")
	ds := NewDataset(NewCanonicalizer(nil, "BR"))

	ds.MergeRow(plan, []string{"5"})

	rec := ds.Records()[0]
	if _, ok := rec.Field("name"); ok {
		t.Error("missing scalar cell should not be set")
	}
	if v, ok := rec.Field("see_all"); !ok || v != false {
		t.Errorf("see_all = %v (set %v), want false", v, ok)
	}
	if len(rec.Groups) != 0 || len(rec.Addresses) != 0 {
		t.Errorf("expected no groups or addresses, got %+v", rec)
	}
}

func TestMergeRow_MissingCellKeepsPreviousScalar(t *testing.T) {
	plan := mustPlan(t, "eid,name")
	ds := NewDataset(NewCanonicalizer(nil, "BR"))

	ds.MergeRow(plan, SplitRow("1,Ana"))
	ds.MergeRow(plan, SplitRow("1"))

	if v, _ := ds.Records()[0].Field("name"); v != "Ana" {
		t.Errorf("name = %v, want Ana", v)
	}
}

func TestMergeRow_Booleans(t *testing.T) {
	plan := mustPlan(t, "eid,see_all,invisible")
	ds := NewDataset(NewCanonicalizer(nil, "BR"))

	ds.MergeRow(plan, SplitRow("1,yes,0"))
	ds.MergeRow(plan, SplitRow("2,no,1"))

	tests := []struct {
		rec       int
		field     string
		wantValue bool
	}{
		{0, "see_all", true},
		{0, "invisible", false},
		{1, "see_all", false},
		{1, "invisible", true},
	}
	for _, tt := range tests {
		v, _ := ds.Records()[tt.rec].Field(tt.field)
		if v != tt.wantValue {
			t.Errorf("record %d %s = %v, want %v", tt.rec, tt.field, v, tt.wantValue)
		}
	}
}

func TestMergeRow_RecordsRejections(t *testing.T) {
	plan := mustPlan(t, "eid,phone,email")
	ds := NewDataset(NewCanonicalizer(newFakePhones(), "BR"))

	ds.MergeRow(plan, SplitRow("9,abc,no email here"))
	ds.MergeRow(plan, SplitRow("9,,"))

	want := []Rejection{
		{Line: 2, IdentityKey: "9", Column: "phone", Kind: AddressPhone, Value: "abc"},
		{Line: 2, IdentityKey: "9", Column: "email", Kind: AddressEmail, Value: "no email here"},
	}
	if !reflect.DeepEqual(ds.Rejections(), want) {
		t.Errorf("Rejections() = %+v, want %+v", ds.Rejections(), want)
	}
}

func TestMergeRow_OrderIsFirstSeen(t *testing.T) {
	plan := mustPlan(t, "eid")
	ds := NewDataset(NewCanonicalizer(nil, "BR"))

	for _, key := range []string{"b", "a", "b", "c", "a"} {
		ds.MergeRow(plan, []string{key})
	}

	var got []string
	for _, rec := range ds.Records() {
		got = append(got, rec.IdentityKey)
	}
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("order = %q, want [b a c]", got)
	}
}
