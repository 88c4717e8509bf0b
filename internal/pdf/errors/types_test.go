package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeUnknown, "UNKNOWN"},
		{ErrorTypeAccessDenied, "ACCESS_DENIED"},
		{ErrorTypeFileTooLarge, "FILE_TOO_LARGE"},
		{ErrorTypeInvalidPDF, "INVALID_PDF"},
		{ErrorTypeUnrecognizedLayout, "UNRECOGNIZED_LAYOUT"},
		{ErrorTypeExport, "EXPORT"},
		{ErrorType(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestErrorType_IsRecoverable(t *testing.T) {
	assert.True(t, ErrorTypeExport.IsRecoverable())
	assert.True(t, ErrorTypeCancelled.IsRecoverable())
	assert.False(t, ErrorTypeUnrecognizedLayout.IsRecoverable())
	assert.False(t, ErrorTypeInvalidPDF.IsRecoverable())
}

func TestPipelineError_Error(t *testing.T) {
	err := New(ErrorTypeUnrecognizedLayout, "no report table found").
		WithFile("/reports/a.pdf").
		WithContext("8 of 14 header keywords required")

	assert.Equal(t, "[UNRECOGNIZED_LAYOUT] no report table found (/reports/a.pdf): 8 of 14 header keywords required", err.Error())
	assert.False(t, err.Recoverable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrorTypeExport, cause).WithPage(3)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "disk full", err.Message)
	assert.Equal(t, 3, err.PageNumber)
	assert.True(t, err.Recoverable)

	wrapped := Wrapf(ErrorTypeInvalidPDF, cause, "cannot read %s", "a.pdf")
	assert.Equal(t, "cannot read a.pdf", wrapped.Message)
	assert.Equal(t, "disk full", wrapped.Context)
	assert.ErrorIs(t, wrapped, cause)
}

func TestTypeOf(t *testing.T) {
	inner := New(ErrorTypeFileTooLarge, "too large")
	outer := fmt.Errorf("process report: %w", inner)

	assert.Equal(t, ErrorTypeFileTooLarge, TypeOf(outer))
	assert.True(t, Is(outer, ErrorTypeFileTooLarge))
	assert.False(t, Is(outer, ErrorTypeExport))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.False(t, Is(nil, ErrorTypeUnknown))

	var pe *PipelineError
	require.True(t, stderrors.As(outer, &pe))
	assert.Equal(t, "too large", pe.Message)
}
