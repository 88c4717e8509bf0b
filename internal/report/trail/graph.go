// Package trail builds the layered account-transaction graph of a fraud
// report: who sent money to whom, hop by hop from the reported account.
package trail

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
)

// Node is an account in the trail.
type Node struct {
	ID       string
	Layer    int
	BankName *string
}

// Edge is one reported transaction. Edges between the same pair of accounts
// are kept individually.
type Edge struct {
	Source   string
	Target   string
	SelfLoop bool
	// Record is the index of the record the edge came from.
	Record int

	TransactionID     fields.Value
	TransactionAmount fields.Value
	DisputedAmount    fields.Value
	TransactionStatus fields.Value
	TransactionDate   fields.Value
	// ChequeNo is only set on self-loops.
	ChequeNo fields.Value
}

// Graph is a directed multigraph with nodes in first-insertion order.
type Graph struct {
	nodes      []*Node
	index      map[string]*Node
	Edges      []Edge
	RootNodeID *string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// ensureNode adds id at layer unless it already exists; an existing node keeps
// the layer it was first given.
func (g *Graph) ensureNode(id string, layer int) *Node {
	if n, ok := g.index[id]; ok {
		return n
	}
	n := &Node{ID: id, Layer: layer}
	g.index[id] = n
	g.nodes = append(g.nodes, n)
	return n
}

// Truncation records that graph construction stopped early because a record
// had no layer. Every record from RecordIndex on was left out of the graph.
type Truncation struct {
	RecordIndex int
	Processed   int
	Discarded   int
}

func (t *Truncation) String() string {
	return fmt.Sprintf("processing truncated at record %d: missing layer, %d record(s) discarded",
		t.RecordIndex, t.Discarded)
}

// Result is the output of Build.
type Result struct {
	Graph *Graph
	// Truncation is nil when every record was processed.
	Truncation *Truncation
}

// Build turns records into a trail graph, strictly in record order.
//
// A record without a layer ends construction: it and every later record are
// dropped, and Result.Truncation reports where that happened.
func Build(records []fields.Record) *Result {
	g := NewGraph()
	res := &Result{Graph: g}

	for i := range records {
		rec := &records[i]

		layer, ok := rec.Layer.Int()
		if !ok {
			res.Truncation = &Truncation{
				RecordIndex: rec.Index,
				Processed:   i,
				Discarded:   len(records) - i,
			}
			break
		}

		parent := rec.SecondColAccountNumber.StringOr(fields.NotAvailable)
		child := rec.AccountNumber.StringOr(fields.NotAvailable)

		if g.RootNodeID == nil && layer == 1 {
			root := parent
			g.RootNodeID = &root
		}

		edge := Edge{
			Source:            parent,
			Record:            rec.Index,
			TransactionID:     rec.TransactionID,
			TransactionAmount: rec.TransactionAmount,
			DisputedAmount:    rec.DisputedAmount,
			TransactionStatus: rec.TransactionStatus,
			TransactionDate:   rec.TransactionDate,
		}

		if IsSelfLoop(parent, child, rec.TransactionStatus.StringOr("")) {
			g.ensureNode(parent, layer)
			edge.Target = parent
			edge.SelfLoop = true
			edge.ChequeNo = rec.ChequeNo
		} else {
			g.ensureNode(parent, layer)
			g.ensureNode(child, layer+1)
			edge.Target = child
		}
		g.Edges = append(g.Edges, edge)
	}

	return res
}

// IsSelfLoop reports whether a transaction stays on the parent account: the
// same account on both sides, or a cash withdrawal by cheque.
func IsSelfLoop(parent, child, status string) bool {
	if parent == child {
		return true
	}
	s := strings.ToLower(status)
	return strings.Contains(s, "cash withdrawal") && strings.Contains(s, "cheque")
}
