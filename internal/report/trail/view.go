package trail

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
)

// NodeView is the serialized form of a Node.
type NodeView struct {
	ID       string  `json:"id"`
	Layer    int     `json:"layer"`
	BankName *string `json:"bankName,omitempty"`
	IconURL  string  `json:"iconUrl,omitempty"`
	Title    string  `json:"title"`
}

// EdgeMetadata carries the transaction details of an EdgeView.
type EdgeMetadata struct {
	TransactionID     fields.Value  `json:"transactionId"`
	TransactionAmount fields.Value  `json:"transactionAmount"`
	DisputedAmount    fields.Value  `json:"disputedAmount"`
	TransactionStatus fields.Value  `json:"transactionStatus"`
	TransactionDate   fields.Value  `json:"transactionDate"`
	ChequeNo          *fields.Value `json:"chequeNo,omitempty"`
}

// EdgeView is the serialized form of an Edge.
type EdgeView struct {
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	SelfLoop bool         `json:"selfLoop"`
	Metadata EdgeMetadata `json:"metadata"`
	Title    string       `json:"title"`
}

// View is what the rendering side consumes: nodes laid out by layer, edges,
// and the root the camera focuses on.
type View struct {
	Nodes      []NodeView `json:"nodes"`
	Edges      []EdgeView `json:"edges"`
	RootNodeID *string    `json:"rootNodeId"`
}

// View builds the serializable view of g. icons may be nil.
func (g *Graph) View(icons *IconTable) *View {
	v := &View{
		Nodes:      make([]NodeView, 0, len(g.nodes)),
		Edges:      make([]EdgeView, 0, len(g.Edges)),
		RootNodeID: g.RootNodeID,
	}

	for _, n := range g.nodes {
		bank := ""
		if n.BankName != nil {
			bank = *n.BankName
		}
		v.Nodes = append(v.Nodes, NodeView{
			ID:       n.ID,
			Layer:    n.Layer,
			BankName: n.BankName,
			IconURL:  icons.Lookup(bank),
			Title:    nodeTitle(n),
		})
	}

	for _, e := range g.Edges {
		ev := EdgeView{
			Source:   e.Source,
			Target:   e.Target,
			SelfLoop: e.SelfLoop,
			Metadata: EdgeMetadata{
				TransactionID:     e.TransactionID,
				TransactionAmount: e.TransactionAmount,
				DisputedAmount:    e.DisputedAmount,
				TransactionStatus: e.TransactionStatus,
				TransactionDate:   e.TransactionDate,
			},
			Title: edgeTitle(e),
		}
		if e.SelfLoop {
			cheque := e.ChequeNo
			ev.Metadata.ChequeNo = &cheque
		}
		v.Edges = append(v.Edges, ev)
	}
	return v
}

func nodeTitle(n *Node) string {
	bank := "Unknown"
	if n.BankName != nil {
		bank = *n.BankName
	}
	return fmt.Sprintf("Account: %s\nLayer: %d\nBank: %s", n.ID, n.Layer, bank)
}

func edgeTitle(e Edge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction ID: %s\n", e.TransactionID.Display())
	fmt.Fprintf(&b, "Amount: %s\n", e.TransactionAmount.Display())
	fmt.Fprintf(&b, "Disputed: %s\n", e.DisputedAmount.Display())
	fmt.Fprintf(&b, "Transaction status: %s\n", strings.ToLower(e.TransactionStatus.StringOr("")))
	if e.SelfLoop {
		fmt.Fprintf(&b, "Cheque No: %s\n", e.ChequeNo.Display())
	}
	fmt.Fprintf(&b, "Transaction Date: %s", e.TransactionDate.Display())
	return b.String()
}
