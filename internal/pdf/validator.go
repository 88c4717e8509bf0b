package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/mcp-fraud-trail/internal/pdf/errors"
)

// Validator checks that a file can be handed to the table reader
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new report validator with the specified size limit
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate runs the file checks and the structural check and reports the
// outcome without failing the call.
func (v *Validator) Validate(req ValidateReportRequest) *ValidateReportResult {
	result := &ValidateReportResult{Path: req.Path}

	pages, err := v.Check(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	result.Pages = pages
	return result
}

// Check validates the file and returns its page count. Errors are
// *errors.PipelineError values.
func (v *Validator) Check(filePath string) (int, error) {
	info, err := v.stat(filePath)
	if err != nil {
		return 0, err
	}
	if err := v.CheckFileInfo(filePath, info); err != nil {
		return 0, err
	}
	return pageCount(filePath)
}

func (v *Validator) stat(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidPath, "path cannot be empty")
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pdferrors.New(pdferrors.ErrorTypeNotFound, "file does not exist").WithFile(filePath)
	}
	if err != nil {
		return nil, pdferrors.Wrapf(pdferrors.ErrorTypeAccessDenied, err, "cannot access file").WithFile(filePath)
	}
	return info, nil
}

// CheckFileInfo validates what can be known without opening the file
func (v *Validator) CheckFileInfo(filePath string, info os.FileInfo) error {
	if info.IsDir() {
		return pdferrors.New(pdferrors.ErrorTypeInvalidPath, "path is a directory, not a file").WithFile(filePath)
	}

	if !isPDFName(filePath) {
		return pdferrors.New(pdferrors.ErrorTypeNotPDF, "file is not a PDF").WithFile(filePath)
	}

	if info.Size() == 0 {
		return pdferrors.New(pdferrors.ErrorTypeEmptyFile, "file is empty").WithFile(filePath)
	}

	if info.Size() > v.maxFileSize {
		return pdferrors.New(pdferrors.ErrorTypeFileTooLarge,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)).WithFile(filePath)
	}

	return nil
}

// pageCount parses the document structure with pdfcpu in relaxed mode.
func pageCount(filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, pdferrors.Wrapf(pdferrors.ErrorTypeAccessDenied, err, "failed to open PDF file").WithFile(filePath)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, pdferrors.Wrapf(pdferrors.ErrorTypeInvalidPDF, err, "failed to read PDF structure").WithFile(filePath)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, pdferrors.Wrapf(pdferrors.ErrorTypeInvalidPDF, err, "failed to determine page count").WithFile(filePath)
	}
	if ctx.PageCount == 0 {
		return 0, pdferrors.New(pdferrors.ErrorTypeInvalidPDF, "document has no pages").WithFile(filePath)
	}

	return ctx.PageCount, nil
}

func isPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
