// Package fields turns the rows of an assembled report table into typed
// records.
//
// Every column the rules understand is decomposed into derived fields and
// dropped; columns no rule sources are carried through unchanged. Extraction
// never fails: a pattern that does not match yields an Unavailable value.
package fields

import (
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
)

// binding is a rule resolved against a concrete header.
type binding struct {
	rule   ColumnRule
	column int
}

// Extract applies Rules to every row of t, in row order.
func Extract(t *table.Table) []Record {
	if t == nil {
		return nil
	}

	bindings, claimed := bind(Rules, t.Header)

	records := make([]Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		r := Record{Index: i}
		for _, b := range bindings {
			b.rule.Apply(row[b.column], &r)
		}
		for col, name := range t.Header {
			if !claimed[col] {
				r.Passthrough = append(r.Passthrough, Field{Name: name, Value: String(row[col])})
			}
		}
		records = append(records, r)
	}
	return records
}

// bind locates each rule's column. Positional rules are bound first so that a
// name-matched rule cannot re-read a column a positional rule consumed.
func bind(rules []ColumnRule, header []string) ([]binding, map[int]bool) {
	claimed := make(map[int]bool)
	var bindings []binding

	for _, positional := range []bool{true, false} {
		for _, rule := range rules {
			if rule.Positional != positional {
				continue
			}
			col, ok := rule.Locate(header)
			if !ok || claimed[col] {
				continue
			}
			claimed[col] = true
			bindings = append(bindings, binding{rule: rule, column: col})
		}
	}
	return bindings, claimed
}
