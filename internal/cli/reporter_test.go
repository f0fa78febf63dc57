package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/cachewire/internal/errors"
)

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false).ReportWarning("proxy directory is outside the module")
	assert.Equal(t, "! proxy directory is outside the module\n", buf.String())
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	inner := errors.NewUnsupportedFactoryError("app.builder", "app.cache", struct{}{})
	err := errors.Wrapf(errors.CodeOf(inner), inner, "compiler pass %s failed", "provider-proxy-installer")

	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false).ReportError("Compilation failed", err)
	out := buf.String()

	assert.Contains(t, out, "ERROR: Compilation failed\n=========================")
	assert.Contains(t, out, `Message: compiler pass provider-proxy-installer failed: cache factory "app.builder"`)
	assert.Contains(t, out, "Suggestions:\n   1. Embed cache.AbstractAdapterFactory")
	assert.NotContains(t, out, "Context:")
	assert.NotContains(t, out, "Type:")
}

func TestDiagnosticReporter_VerboseShowsContext(t *testing.T) {
	err := errors.New(errors.ConfigurationErrorCode, "bad service").
		WithContext("service_id", "app.cache").
		WithLocation(errors.SourceLocation{File: "services.yaml", Line: 4, Column: 3})

	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, true).ReportError("Compilation failed", err)
	out := buf.String()

	assert.Contains(t, out, "Type: ConfigurationError")
	assert.Contains(t, out, "Location: services.yaml:4:3")
	assert.Contains(t, out, "Context:\n   Service Id: app.cache\n")
}

func TestDiagnosticReporter_MultipleErrors(t *testing.T) {
	multi := errors.NewMultipleErrors()
	multi.Add(errors.NewClassNotFoundError("app.A", "a"))
	multi.Add(errors.NewClassNotFoundError("app.B", "b"))

	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false).ReportError("Invalid services file", multi)
	out := buf.String()

	assert.Contains(t, out, `1) Message: class "app.A" of service "a" is not registered`)
	assert.Contains(t, out, `2) Message: class "app.B" of service "b" is not registered`)
}

func TestDiagnosticReporter_PlainError(t *testing.T) {
	var buf bytes.Buffer
	r := NewDiagnosticReporter(&buf, true)
	r.ReportError("Failed", fmt.Errorf("boom"))
	r.ReportError("Ignored", nil)

	assert.Contains(t, buf.String(), "Message: boom\n")
	assert.NotContains(t, buf.String(), "Ignored")
	assert.NotContains(t, buf.String(), "Type:")
}
