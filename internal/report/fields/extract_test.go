package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-fraud-trail/internal/report/table"
)

func sampleTable() *table.Table {
	return &table.Table{
		Header: []string{
			"S. No.", "Account No./ (Wallet /PG/PA) Id", "Action Taken", "Bank/ (Wallet /PG/PA)",
			"Account\nDetails", "Transaction Details", "Date of Action",
		},
		Rows: [][]string{
			{
				"1",
				"918020012345678\nUPI\nUTR4455\nLayer : 1",
				"Money Transferred to\nTxn Date: 02/03/2024 11:20 AM",
				"Axis Bank\nLtd\nPune",
				"A/c No.: 50100123456789\nIFSC Code: HDFC0001234\nReported 2 times",
				"Transaction ID / UTR Number-: 4455\nTransaction Amount-: 15000\nDisputed Amount: 15000",
				"04/03/2024",
			},
			{
				"2",
				"50100123456789",
				"Put on hold",
				"HDFC Bank",
				"",
				"",
				"",
			},
		},
	}
}

func TestExtract(t *testing.T) {
	records := Extract(sampleTable())
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, String("918020012345678"), first.SecondColAccountNumber)
	assert.Equal(t, String("UTR4455"), first.SecondColTransactionID)
	assert.Equal(t, Integer(1), first.Layer)
	assert.Equal(t, String("Money Transferred to"), first.TransactionStatus)
	assert.Equal(t, String("02/03/2024 11:20 AM"), first.TransactionDate)
	assert.Equal(t, String("Axis Bank Ltd"), first.ProcessedBankName)
	assert.Equal(t, String("50100123456789"), first.AccountNumber)
	assert.Equal(t, String("HDFC0001234"), first.IFSCCode)
	assert.Equal(t, Integer(2), first.ReportedCount)
	assert.Equal(t, String("4455"), first.TransactionID)
	assert.Equal(t, "15000", first.TransactionAmount.Display())

	second := records[1]
	assert.Equal(t, Unavailable(), second.Layer)
	assert.Equal(t, String("Put on hold"), second.TransactionStatus)
	assert.Equal(t, Unavailable(), second.AccountNumber)
	assert.Equal(t, String(""), second.AccountDetailsReport)
	assert.Equal(t, Unavailable(), second.TransactionAmount)
}

func TestExtract_SourcedColumnsReplaced(t *testing.T) {
	records := Extract(sampleTable())
	require.NotEmpty(t, records)

	var names []string
	for _, f := range records[0].Fields() {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{
		"S. No.", "Date of Action",
		ColExtractedBankName, ColProcessedBankName,
		ColTransactionStatus, ColChequeNo, ColTransactionDate,
		ColSecondColAccountNumber, ColSecondColTransactionID, ColLayer,
		ColAccountNumber, ColIFSCCode, ColReportedCount, ColAccountDetailsReport,
		ColTransactionID, ColTransactionAmount, ColDisputedAmount,
	}, names)
}

func TestExtract_PositionalRuleClaimsNamedColumn(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"S. No.", "Account No.", "Action Taken", "Account Details"},
		Rows:   [][]string{{"1", "ABC", "Hold", "Some Bank\nBranch"}},
	}

	records := Extract(tbl)
	require.Len(t, records, 1)
	assert.True(t, records[0].AccountNumber.IsAbsent(), "bank rule owns column 3")
	assert.Equal(t, String("Some Bank"), records[0].ProcessedBankName)
}

func TestExtract_NarrowTable(t *testing.T) {
	tbl := &table.Table{
		Header: []string{"S. No.", "Account No."},
		Rows:   [][]string{{"1", "ABC"}},
	}

	records := Extract(tbl)
	require.Len(t, records, 1)
	assert.True(t, records[0].ProcessedBankName.IsAbsent())
	assert.True(t, records[0].TransactionStatus.IsAbsent())
	assert.Equal(t, String("ABC"), records[0].SecondColAccountNumber)
}

func TestExtract_Deterministic(t *testing.T) {
	a, err := json.Marshal(Extract(sampleTable()))
	require.NoError(t, err)
	b, err := json.Marshal(Extract(sampleTable()))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExtract_NilTable(t *testing.T) {
	assert.Nil(t, Extract(nil))
}

func TestColumnsAndIndexedMap(t *testing.T) {
	records := Extract(sampleTable())

	cols := Columns(records)
	assert.Equal(t, "S. No.", cols[0])
	assert.Contains(t, cols, ColDisputedAmount)

	m := IndexedMap(records)
	require.Len(t, m, 2)
	assert.Equal(t, 1, m["1"].Index)
}
