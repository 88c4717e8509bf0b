package fields

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ColumnRule decomposes one report column into derived record fields.
type ColumnRule struct {
	Name string
	// Assumption documents the layout heuristic the rule depends on.
	Assumption string
	// Positional rules address a fixed header index; the others match by
	// header name and never claim a column a positional rule already took.
	Positional bool
	Locate     func(header []string) (int, bool)
	Apply      func(cell string, r *Record)
}

// Column positions used by the positional rules.
const (
	AccountColumn = 1
	StatusColumn  = 2
	BankColumn    = 3
)

// accountPrefixWidth is the width of the label that precedes the account
// number in the "Account Details" cell.
const accountPrefixWidth = 9

// Rules is the ordered rule set applied by Extract.
var Rules = []ColumnRule{
	{
		Name:       "bank",
		Assumption: "4th column holds the institution name on its first one or two lines",
		Positional: true,
		Locate:     at(BankColumn),
		Apply:      applyBank,
	},
	{
		Name:       "transaction status",
		Assumption: "3rd column holds the status followed by a \"Txn Date:\" or \"Date:\" marker",
		Positional: true,
		Locate:     at(StatusColumn),
		Apply:      applyStatus,
	},
	{
		Name: "account identity",
		Assumption: "2nd column holds the account number on line 1 (continued on line 2 when it wraps " +
			"with at most 7 digits), then the transaction id and a \"Layer : N\" token",
		Positional: true,
		Locate:     at(AccountColumn),
		Apply:      applyAccountIdentity,
	},
	{
		Name:       "account details",
		Assumption: "account number follows a constant-width 9 character label prefix",
		Locate:     named("account details"),
		Apply:      applyAccountDetails,
	},
	{
		Name:       "transaction details",
		Assumption: "values follow \"Transaction ID / UTR Number-:\", \"Transaction Amount-:\" and \"Disputed Amount:\" labels",
		Locate:     named("transaction details"),
		Apply:      applyTransactionDetails,
	},
}

func at(index int) func([]string) (int, bool) {
	return func(header []string) (int, bool) {
		return index, index < len(header)
	}
}

func named(name string) func([]string) (int, bool) {
	return func(header []string) (int, bool) {
		for i, h := range header {
			if strings.EqualFold(strings.Join(strings.Fields(h), " "), name) {
				return i, true
			}
		}
		return 0, false
	}
}

var bankKeywords = []string{"bank", "ltd", "limited"}

func applyBank(cell string, r *Record) {
	lines := strings.Split(cell, "\n")
	if len(lines) > 2 {
		lines = lines[:2]
	}
	r.ExtractedBankName = String(strings.Join(lines, "\n"))

	name := strings.TrimSpace(lines[0])
	for _, line := range lines[1:] {
		lower := strings.ToLower(line)
		for _, kw := range bankKeywords {
			if strings.Contains(lower, kw) {
				name += " " + strings.TrimSpace(line)
				break
			}
		}
	}
	r.ProcessedBankName = String(name)
}

var (
	txnDateMarker = regexp.MustCompile(`(?i)Txn Date:`)
	dateMarker    = regexp.MustCompile(`(?i)Date:`)
	chequeNo      = regexp.MustCompile(`(?i)Cheque\s*No\s*[:\-]?\s*(\d+)`)
	dateValue     = regexp.MustCompile(`^\s*([\d:/\sAPMapm]+)`)
)

func applyStatus(cell string, r *Record) {
	text := flatten(cell)

	loc := txnDateMarker.FindStringIndex(text)
	if loc == nil {
		loc = dateMarker.FindStringIndex(text)
	}
	if loc == nil {
		r.TransactionStatus = String(text)
		r.ChequeNo = Unavailable()
		r.TransactionDate = Unavailable()
		return
	}

	r.TransactionStatus = String(strings.TrimSpace(text[:loc[0]]))
	if m := chequeNo.FindStringSubmatch(text); m != nil {
		r.ChequeNo = String(m[1])
	} else {
		r.ChequeNo = Unavailable()
	}

	date := ""
	if m := dateValue.FindStringSubmatch(text[loc[1]:]); m != nil {
		date = strings.TrimSpace(m[1])
	}
	r.TransactionDate = optional(date, date != "")
}

var layerToken = regexp.MustCompile(`Layer\s*:\s*(\d+)`)

func applyAccountIdentity(cell string, r *Record) {
	lines := strings.Split(strings.TrimSpace(cell), "\n")
	r.SecondColAccountNumber = String(accountNumber(lines))

	if len(lines) < 3 {
		r.SecondColTransactionID = Unavailable()
		r.Layer = Unavailable()
		return
	}

	working := strings.Join(lines[2:], "")
	r.Layer = Unavailable()
	if m := layerToken.FindStringSubmatchIndex(working); m != nil {
		if n, err := strconv.Atoi(working[m[2]:m[3]]); err == nil {
			r.Layer = Integer(n)
		}
		working = working[:m[0]]
	}
	r.SecondColTransactionID = String(strings.TrimSpace(working))
}

// accountNumber joins a wrapped account number: a purely numeric second line
// of at most 7 digits continues line 1, anything else on line 2 is unrelated.
func accountNumber(lines []string) string {
	if len(lines) < 2 {
		return lines[0]
	}
	second := strings.TrimSpace(lines[1])
	if !isDigits(second) || len(second) > 7 {
		return lines[0]
	}
	return lines[0] + second
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var (
	ifscKeyword   = regexp.MustCompile(`(?i)\bifsc\b`)
	ifscCode      = regexp.MustCompile(`\b[A-Z]{4}\d[A-Z0-9]{6}\b`)
	reportedCount = regexp.MustCompile(`Reported (\d+) times`)
)

func applyAccountDetails(cell string, r *Record) {
	var block string
	if loc := ifscKeyword.FindStringIndex(cell); loc != nil {
		block = strings.TrimSpace(cell[:loc[0]])
	} else {
		lines := strings.Split(cell, "\n")
		if len(lines) > 2 {
			lines = lines[:2]
		}
		block = strings.TrimSpace(strings.Join(lines, ""))
	}
	block = strings.ReplaceAll(block, "\n", "")

	r.AccountNumber = Unavailable()
	if utf8.RuneCountInString(block) > accountPrefixWidth {
		r.AccountNumber = String(string([]rune(block)[accountPrefixWidth:]))
	}

	r.IFSCCode = Unavailable()
	if code := ifscCode.FindString(cell); code != "" {
		r.IFSCCode = String(code)
	}

	r.ReportedCount = Unavailable()
	if m := reportedCount.FindStringSubmatch(cell); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			r.ReportedCount = Integer(n)
		}
	}

	if r.AccountNumber.IsNull() && r.IFSCCode.IsNull() && r.ReportedCount.IsNull() {
		r.AccountDetailsReport = String(cell)
		return
	}
	r.AccountDetailsReport = String("Account: " + r.AccountNumber.Display() +
		" - IFSC: " + r.IFSCCode.Display() +
		" - Reported: " + r.ReportedCount.Display() + " times")
}

var (
	transactionID     = regexp.MustCompile(`Transaction ID / UTR\s+Number-:\s*([A-Z]*\d+)`)
	transactionAmount = regexp.MustCompile(`Transaction Amount-:\s*(\d+(?:\.\d+)?)`)
	disputedAmount    = regexp.MustCompile(`Disputed Amount:\s*(\d+(?:\.\d+)?)`)
)

func applyTransactionDetails(cell string, r *Record) {
	text := flatten(cell)

	r.TransactionID = Unavailable()
	if m := transactionID.FindStringSubmatch(text); m != nil {
		r.TransactionID = String(m[1])
	}
	r.TransactionAmount = amount(transactionAmount, text)
	r.DisputedAmount = amount(disputedAmount, text)
}

// amount never maps a missing or malformed amount to zero.
func amount(re *regexp.Regexp, text string) Value {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Unavailable()
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return Unavailable()
	}
	return Number(d)
}

// flatten replaces newlines with spaces and trims the result.
func flatten(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
