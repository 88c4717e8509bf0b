package trail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
)

// record builds a record; layer < 0 means no layer.
func record(index, layer int, parent, child, status string) fields.Record {
	r := fields.Record{
		Index:                  index,
		SecondColAccountNumber: fields.String(parent),
		AccountNumber:          fields.String(child),
		TransactionStatus:      fields.String(status),
		TransactionID:          fields.String("TXN" + parent + child),
		TransactionAmount:      fields.Unavailable(),
		DisputedAmount:         fields.Unavailable(),
		TransactionDate:        fields.String("01/01/2024"),
		ChequeNo:               fields.Unavailable(),
		Layer:                  fields.Unavailable(),
	}
	if layer >= 0 {
		r.Layer = fields.Integer(layer)
	}
	return r
}

func nodeIDs(g *Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuild_Layers(t *testing.T) {
	res := Build([]fields.Record{
		record(0, 1, "A", "B", "Money transferred"),
		record(1, 2, "B", "C", "Money transferred"),
		record(2, 2, "B", "D", "Money transferred"),
		record(3, 3, "C", "B", "Money transferred"),
	})

	g := res.Graph
	require.Nil(t, res.Truncation)
	assert.Equal(t, []string{"A", "B", "C", "D"}, nodeIDs(g))

	want := map[string]int{"A": 1, "B": 2, "C": 3, "D": 3}
	for id, layer := range want {
		n, ok := g.Node(id)
		require.True(t, ok, id)
		assert.Equal(t, layer, n.Layer, id)
	}

	require.Len(t, g.Edges, 4)
	assert.Equal(t, "C", g.Edges[3].Source)
	assert.Equal(t, "B", g.Edges[3].Target, "back edge keeps B at its first layer")
}

func TestBuild_FreshTargetsSitOneLayerDown(t *testing.T) {
	res := Build([]fields.Record{
		record(0, 1, "A", "B", ""),
		record(1, 2, "B", "C", ""),
		record(2, 3, "C", "D", ""),
	})

	for _, e := range res.Graph.Edges {
		src, _ := res.Graph.Node(e.Source)
		dst, _ := res.Graph.Node(e.Target)
		assert.Equal(t, src.Layer+1, dst.Layer)
	}
}

func TestBuild_Root(t *testing.T) {
	res := Build([]fields.Record{
		record(0, 2, "X", "Y", ""),
		record(1, 1, "A", "B", ""),
		record(2, 1, "C", "D", ""),
	})

	require.NotNil(t, res.Graph.RootNodeID)
	assert.Equal(t, "A", *res.Graph.RootNodeID)
}

func TestBuild_NoRoot(t *testing.T) {
	res := Build([]fields.Record{record(0, 2, "X", "Y", "")})
	assert.Nil(t, res.Graph.RootNodeID)
}

func TestBuild_SelfLoops(t *testing.T) {
	cheque := record(1, 2, "B", "C", "Cash Withdrawal through CHEQUE")
	cheque.ChequeNo = fields.String("004512")

	res := Build([]fields.Record{
		record(0, 1, "A", "B", "Money transferred"),
		cheque,
		record(2, 2, "B", "B", "Money transferred"),
	})

	g := res.Graph
	assert.Equal(t, []string{"A", "B"}, nodeIDs(g), "no child node for self-loops")
	require.Len(t, g.Edges, 3)

	for _, e := range g.Edges[1:] {
		assert.True(t, e.SelfLoop)
		assert.Equal(t, "B", e.Source)
		assert.Equal(t, "B", e.Target)
	}
	assert.Equal(t, fields.String("004512"), g.Edges[1].ChequeNo)
	assert.True(t, g.Edges[0].ChequeNo.IsAbsent())

	b, _ := g.Node("B")
	assert.Equal(t, 2, b.Layer)
}

func TestBuild_SelfLoopCreatesMissingParent(t *testing.T) {
	res := Build([]fields.Record{record(0, 3, "Q", "Q", "")})

	q, ok := res.Graph.Node("Q")
	require.True(t, ok)
	assert.Equal(t, 3, q.Layer)
	assert.Len(t, res.Graph.Nodes(), 1)
}

func TestBuild_Truncation(t *testing.T) {
	res := Build([]fields.Record{
		record(0, 1, "A", "B", ""),
		record(1, 2, "B", "C", ""),
		record(2, -1, "C", "D", ""),
		record(3, 3, "C", "E", ""),
	})

	assert.Equal(t, []string{"A", "B", "C"}, nodeIDs(res.Graph))
	assert.Len(t, res.Graph.Edges, 2)
	require.NotNil(t, res.Truncation)
	assert.Equal(t, 2, res.Truncation.RecordIndex)
	assert.Equal(t, 2, res.Truncation.Processed)
	assert.Equal(t, 2, res.Truncation.Discarded)
	assert.Contains(t, res.Truncation.String(), "truncated at record 2")
}

func TestBuild_MultigraphKeepsParallelEdges(t *testing.T) {
	res := Build([]fields.Record{
		record(0, 1, "A", "B", ""),
		record(1, 1, "A", "B", ""),
	})
	require.Len(t, res.Graph.Edges, 2)
	assert.Equal(t, 0, res.Graph.Edges[0].Record)
	assert.Equal(t, 1, res.Graph.Edges[1].Record)
}

func TestBuild_MissingAccountsUseFallback(t *testing.T) {
	r := record(0, 1, "A", "B", "")
	r.AccountNumber = fields.Unavailable()

	res := Build([]fields.Record{r})
	_, ok := res.Graph.Node(fields.NotAvailable)
	assert.True(t, ok)
}

func TestIsSelfLoop(t *testing.T) {
	tests := []struct {
		name          string
		parent, child string
		status        string
		want          bool
	}{
		{"same account", "A", "A", "transfer", true},
		{"cash withdrawal by cheque", "A", "B", "Cash Withdrawal via Cheque", true},
		{"cash withdrawal at atm", "A", "B", "Cash Withdrawal ATM", false},
		{"cheque deposit", "A", "B", "Cheque deposit", false},
		{"transfer", "A", "B", "Money transfer", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSelfLoop(tt.parent, tt.child, tt.status))
		})
	}
}
