package trail

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/mcp-fraud-trail/internal/report/fields"
	"golang.org/x/text/cases"
)

// ResolveBankNames sets each node's BankName from the first record whose
// AccountNumber equals the node id. The first matching record ends the search
// even when it carries no bank name.
func ResolveBankNames(g *Graph, records []fields.Record) {
	for _, n := range g.Nodes() {
		for i := range records {
			acct, ok := records[i].AccountNumber.Str()
			if !ok || acct != n.ID {
				continue
			}
			if name, ok := records[i].ProcessedBankName.Str(); ok && name != "" {
				lower := strings.ToLower(name)
				n.BankName = &lower
			}
			break
		}
	}
}

// DefaultIconKey is the icon table entry used when a bank has no icon.
const DefaultIconKey = "default"

// IconTable maps bank names to icon image URLs, ignoring case. It is never
// modified after construction and is safe for concurrent use.
type IconTable struct {
	icons map[string]string
}

// NewIconTable copies icons into a new table.
func NewIconTable(icons map[string]string) *IconTable {
	t := &IconTable{icons: make(map[string]string, len(icons))}
	for name, url := range icons {
		t.icons[iconKey(name)] = url
	}
	return t
}

// LoadIconTable reads a JSON object of bank name to icon URL.
func LoadIconTable(path string) (*IconTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon table: %w", err)
	}
	var icons map[string]string
	if err := json.Unmarshal(data, &icons); err != nil {
		return nil, fmt.Errorf("failed to parse icon table %s: %w", path, err)
	}
	return NewIconTable(icons), nil
}

// Lookup returns the icon for bankName, falling back to the default entry.
// It returns "" when neither exists.
func (t *IconTable) Lookup(bankName string) string {
	if t == nil {
		return ""
	}
	if bankName != "" {
		if url, ok := t.icons[iconKey(bankName)]; ok {
			return url
		}
	}
	return t.icons[DefaultIconKey]
}

// iconKey case-folds a bank name. Casers are stateful, so each call gets its
// own.
func iconKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Len returns the number of entries.
func (t *IconTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.icons)
}
