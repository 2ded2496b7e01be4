package core

// Dataset accumulates records across rows. Records are kept in first-seen
// order and indexed by identity key; rows without a key always start a new
// record and are never indexed.
type Dataset struct {
	canon *Canonicalizer

	records []*Record
	index   map[string]*Record

	rejections []Rejection
	merged     int
}

// NewDataset returns an empty Dataset that validates addresses with canon.
func NewDataset(canon *Canonicalizer) *Dataset {
	return &Dataset{
		canon:   canon,
		records: []*Record{},
		index:   make(map[string]*Record),
	}
}

// Records returns the accumulated records in first-seen order.
func (d *Dataset) Records() []*Record {
	return d.records
}

// Rejections returns every address candidate rejected so far.
func (d *Dataset) Rejections() []Rejection {
	return d.rejections
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// MergeRow folds one data row into the dataset. Short rows are fine: missing
// cells read as absent values.
func (d *Dataset) MergeRow(plan *Plan, row []string) {
	d.merged++
	// Line 1 is the header.
	d.mergeRow(plan, row, d.merged+1)
}

func (d *Dataset) mergeRow(plan *Plan, row []string, line int) {
	var key string
	keyValues := cellAt(row, plan.IdentityPosition())
	if len(keyValues) > 0 {
		key = keyValues[0]
	}

	rec, found := d.index[key]
	if key == "" || !found {
		rec = newRecord(key)
		found = false
	}

	for _, col := range plan.Columns {
		current := cellAt(row, col.Position)

		switch col.Kind {
		case FieldGroup:
			for _, g := range current {
				if g != "" && !rec.hasGroup(g) {
					rec.Groups = append(rec.Groups, g)
				}
			}

		case FieldAddress:
			if current == nil {
				continue
			}
			accepted, rejected := d.canon.canonicalize(col.Address, current)
			for _, value := range accepted {
				if rec.hasAddress(col.Address, value) {
					continue
				}
				rec.Addresses = append(rec.Addresses, Address{
					Type:    col.Address,
					Tags:    append([]string{}, col.Tags...),
					Address: value,
				})
			}
			for _, raw := range rejected {
				if raw == "" {
					continue
				}
				d.rejections = append(d.rejections, Rejection{
					Line:        line,
					IdentityKey: key,
					Column:      col.BaseName,
					Kind:        col.Address,
					Value:       raw,
				})
			}

		case FieldBoolean:
			rec.Set(col.BaseName, ParseBoolean(first(current)))

		default:
			if current == nil {
				continue
			}
			rec.Set(col.BaseName, current[0])
		}
	}

	if !found {
		d.records = append(d.records, rec)
		if key != "" {
			d.index[key] = rec
		}
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
