package pdf

import "github.com/a3tai/mcp-fraud-trail/internal/pdf/pdftest"

var (
	buildPDF = pdftest.Build
	textPage = pdftest.TextPage
	writePDF = pdftest.Write
)
