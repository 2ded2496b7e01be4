package core

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a structural problem with the input that aborts
// the run before any data row is processed.
type ConfigurationError struct {
	Column string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required column %q in header", e.Column)
}

// BuildColumnPlan parses the header line into column specs. Only the first
// parsed value of each header cell is used; its first whitespace token is the
// base name and the remaining tokens are tags.
func BuildColumnPlan(headerLine string) (*Plan, error) {
	cells := SplitRow(headerLine)

	plan := &Plan{
		Columns:  make([]ColumnSpec, 0, len(cells)),
		identity: -1,
	}

	for pos, cell := range cells {
		var first string
		if values := ParseValue(cell); len(values) > 0 {
			first = values[0]
		}

		tokens := strings.Fields(first)
		col := ColumnSpec{Position: pos, Tags: []string{}}
		if len(tokens) > 0 {
			col.BaseName = tokens[0]
			col.Tags = tokens[1:]
		}
		col.Kind, col.Address = Classify(col.BaseName)

		if col.BaseName == IdentityColumn && plan.identity < 0 {
			plan.identity = len(plan.Columns)
		}
		plan.Columns = append(plan.Columns, col)
	}

	if plan.identity < 0 {
		return nil, &ConfigurationError{Column: IdentityColumn}
	}
	return plan, nil
}
