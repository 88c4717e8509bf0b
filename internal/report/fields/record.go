package fields

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Canonical column names of the derived fields, in export order.
const (
	ColExtractedBankName      = "Extracted Bank Name"
	ColProcessedBankName      = "Processed_Bank_Name"
	ColTransactionStatus      = "Transaction status"
	ColChequeNo               = "Cheque No"
	ColTransactionDate        = "Transaction Date"
	ColSecondColAccountNumber = "Second Col Account Number"
	ColSecondColTransactionID = "Second Col Transaction ID"
	ColLayer                  = "Layer"
	ColAccountNumber          = "Account Number"
	ColIFSCCode               = "IFSC Code"
	ColReportedCount          = "Reported Count"
	ColAccountDetailsReport   = "Account Details Report"
	ColTransactionID          = "Transaction ID / UTR Number"
	ColTransactionAmount      = "Transaction Amount"
	ColDisputedAmount         = "Disputed Amount"
)

// Field is one named value of the flat record view.
type Field struct {
	Name  string
	Value Value
}

// Record is the structured form of one report row.
type Record struct {
	// Index is the row's position in the assembled table.
	Index int

	ExtractedBankName      Value
	ProcessedBankName      Value
	TransactionStatus      Value
	ChequeNo               Value
	TransactionDate        Value
	SecondColAccountNumber Value
	SecondColTransactionID Value
	Layer                  Value
	AccountNumber          Value
	IFSCCode               Value
	ReportedCount          Value
	AccountDetailsReport   Value
	TransactionID          Value
	TransactionAmount      Value
	DisputedAmount         Value

	// Passthrough holds the columns no rule sources, in header order.
	Passthrough []Field
}

// Fields returns the flat view of the record: passthrough columns first, then
// the derived fields in canonical order. Absent fields are omitted.
func (r *Record) Fields() []Field {
	out := make([]Field, 0, len(r.Passthrough)+15)
	out = append(out, r.Passthrough...)
	for _, f := range []Field{
		{ColExtractedBankName, r.ExtractedBankName},
		{ColProcessedBankName, r.ProcessedBankName},
		{ColTransactionStatus, r.TransactionStatus},
		{ColChequeNo, r.ChequeNo},
		{ColTransactionDate, r.TransactionDate},
		{ColSecondColAccountNumber, r.SecondColAccountNumber},
		{ColSecondColTransactionID, r.SecondColTransactionID},
		{ColLayer, r.Layer},
		{ColAccountNumber, r.AccountNumber},
		{ColIFSCCode, r.IFSCCode},
		{ColReportedCount, r.ReportedCount},
		{ColAccountDetailsReport, r.AccountDetailsReport},
		{ColTransactionID, r.TransactionID},
		{ColTransactionAmount, r.TransactionAmount},
		{ColDisputedAmount, r.DisputedAmount},
	} {
		if !f.Value.IsAbsent() {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON encodes the flat view as an object that keeps field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Columns returns the union of flat column names over records, in first-seen
// order.
func Columns(records []Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for i := range records {
		for _, f := range records[i].Fields() {
			if !seen[f.Name] {
				seen[f.Name] = true
				cols = append(cols, f.Name)
			}
		}
	}
	return cols
}

// IndexedMap returns the records keyed by their position ("0", "1", ...).
func IndexedMap(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for i, r := range records {
		m[strconv.Itoa(i)] = r
	}
	return m
}
