package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	// Processing Tools
	FraudProcessReportDescription = `Turn a fraud-investigation complaint report PDF into structured records and a money-trail graph.

**When to use:** A complaint report (the tabular "action taken by bank" export) has been placed in the report directory and the disputed money needs to be followed across accounts.

**Why it's useful:** Recognizes the report table across pages, drops repeated headers, splits every packed cell into fields (account number, layer, IFSC code, amounts, transaction status, cheque number, date) and links accounts layer by layer.

**Examples:**
• Trace a complaint: "Process complaint-31212240012345.pdf and tell me where the money went after layer 2"
• Bulk review: "Process every report in march/ and list those that were truncated"
• Hand-off to analysts: "Process report.pdf and give me the path of the Excel workbook"

**Output:** record, node and edge counts, the root account, diagnostics (for example a record without a layer that stopped graph construction) and the paths of the written workbook, records JSON and graph JSON.

**Best practices:** Run fraud_list_reports first to find the exact path; a report whose header row cannot be recognized is reported as UNRECOGNIZED_LAYOUT rather than producing empty output.`

	FraudTrailGraphDescription = `Return the account-transaction trail graph of a report as JSON.

**When to use:** Need the nodes (accounts with layer, bank and icon) and edges (transactions with amount, date, status and cheque number) to render or reason about the money trail.

**Why it's useful:** Same pipeline as fraud_process_report but returns the graph itself instead of a summary; self-loops mark cash withdrawals by cheque and transfers back into the same account.

**Examples:**
• Visualize: "Get the trail graph of complaint.pdf and draw it layer by layer"
• Find the end of the trail: "Which accounts in report.pdf have no outgoing transactions?"

**Best practices:** The rootNodeId is the source account of the first layer 1 record; it is null when no record has layer 1.`

	FraudValidateReportDescription = `Check that a report PDF can be processed before running the pipeline.

**When to use:** Before processing uploads of unknown quality.

**Why it's useful:** Verifies the file is inside the report directory, has a .pdf extension, is not empty or oversized, and parses as a PDF; returns the page count.

**Examples:**
• Upload check: "Validate uploads/complaint.pdf"

**Best practices:** Validation does not look for the report table; only processing can tell whether the layout is recognized.`

	// Discovery Tools
	FraudListReportsDescription = `List report PDFs in the report directory, optionally filtered by name.

**When to use:** Need to find which complaint reports are available or locate one by part of its file name.

**Why it's useful:** Walks the configured directory (or a subdirectory of it), skips hidden directories and files that cannot be processed, and matches the query case-insensitively against file names.

**Examples:**
• Everything: "List all reports"
• By complaint number: "Find reports whose name contains 31212240"
• By folder: "List reports in march/"

**Best practices:** Paths returned here can be passed unchanged to fraud_process_report.`

	FraudServerInfoDescription = `Get server configuration and capabilities.

**When to use:** At the start of a session to learn the report directory, artifact settings and available tools.

**Why it's useful:** Reports the report directory, output directory, artifact retention, file size limit, number of configured bank icons and the number of reports currently available.

**Best practices:** Call once before working with reports; paths outside the report directory are rejected.`
)

// Tool names
const (
	ToolProcessReport  = "fraud_process_report"
	ToolTrailGraph     = "fraud_trail_graph"
	ToolValidateReport = "fraud_validate_report"
	ToolListReports    = "fraud_list_reports"
	ToolServerInfo     = "fraud_server_info"
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ToolProcessReport:  FraudProcessReportDescription,
	ToolTrailGraph:     FraudTrailGraphDescription,
	ToolValidateReport: FraudValidateReportDescription,
	ToolListReports:    FraudListReportsDescription,
	ToolServerInfo:     FraudServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
