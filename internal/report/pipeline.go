// Package report runs the fraud report pipeline: table fragments are
// assembled into one table, decomposed into records, and turned into the
// account-transaction trail graph.
package report

import (
	"fmt"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
	"github.com/a3tai/mcp-fraud-trail/internal/report/trail"
)

// Outcome holds everything derived from one document.
type Outcome struct {
	Table   *table.Table
	Records []fields.Record
	Graph   *trail.Graph
	// Truncation is set when graph construction stopped at a record without
	// a layer. Records are complete either way; the graph is not.
	Truncation *trail.Truncation
}

// Process runs the whole pipeline over the fragments of one document. The
// only error is table.ErrLayoutNotFound, wrapped.
func Process(fragments []table.Fragment) (*Outcome, error) {
	t, err := table.Assemble(fragments)
	if err != nil {
		return nil, fmt.Errorf("assemble report table: %w", err)
	}

	records := fields.Extract(t)
	built := trail.Build(records)
	trail.ResolveBankNames(built.Graph, records)

	return &Outcome{
		Table:      t,
		Records:    records,
		Graph:      built.Graph,
		Truncation: built.Truncation,
	}, nil
}

// Diagnostics lists conditions a caller should surface with the outcome.
func (o *Outcome) Diagnostics() []string {
	var out []string
	if o.Truncation != nil {
		out = append(out, o.Truncation.String())
	}
	if o.Graph.RootNodeID == nil && len(o.Graph.Edges) > 0 {
		out = append(out, "no layer 1 record: graph has no root account")
	}
	return out
}

// Complete reports whether every record made it into the graph.
func (o *Outcome) Complete() bool {
	return o.Truncation == nil
}
