package core

// Classify maps a column base name to its handling strategy. The mapping is
// closed: adding a kind means adding a base name here and a branch in MergeRow.
func Classify(baseName string) (FieldKind, AddressKind) {
	switch baseName {
	case "group":
		return FieldGroup, ""
	case "email":
		return FieldAddress, AddressEmail
	case "phone":
		return FieldAddress, AddressPhone
	case "see_all", "invisible":
		return FieldBoolean, ""
	default:
		return FieldScalar, ""
	}
}
