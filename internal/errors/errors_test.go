package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_Error(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name string
		err  *BaseError
		want string
	}{
		{"message only", New(ConfigurationErrorCode, "bad"), "bad"},
		{"with cause", Wrap(ConfigurationErrorCode, "bad", cause), "bad: boom"},
		{
			"with location",
			New(SyntaxErrorCode, "bad").WithLocation(SourceLocation{File: "services.yaml", Line: 3, Column: 5}),
			"services.yaml:3:5: bad",
		},
		{
			"with location and cause",
			Wrapf(SyntaxErrorCode, cause, "bad %s", "thing").WithLocation(SourceLocation{File: "services.yaml", Line: 3}),
			"services.yaml:3: bad thing: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSourceLocation_String(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "a.yaml", SourceLocation{File: "a.yaml"}.String())
	assert.Equal(t, "a.yaml:2", SourceLocation{File: "a.yaml", Line: 2}.String())
	assert.Equal(t, "a.yaml:2:7", SourceLocation{File: "a.yaml", Line: 2, Column: 7}.String())
}

func TestBaseError_ContextAndSuggestions(t *testing.T) {
	err := New(DependencyErrorCode, "missing").
		WithContext("service_id", "app.cache").
		WithSuggestion("first").
		WithSuggestions("second", "third")

	assert.Equal(t, map[string]interface{}{"service_id": "app.cache"}, err.Context())
	assert.Equal(t, []string{"first", "second", "third"}, err.Suggestions())
	assert.Empty(t, (&BaseError{}).Context())
}

func TestCodeOf(t *testing.T) {
	wire := New(FileSystemErrorCode, "disk")
	wrapped := fmt.Errorf("outer: %w", wire)

	assert.Equal(t, FileSystemErrorCode, CodeOf(wire))
	assert.Equal(t, FileSystemErrorCode, CodeOf(wrapped))
	assert.Equal(t, UnknownErrorCode, CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, UnknownErrorCode, CodeOf(nil))
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "SyntaxError", SyntaxErrorCode.String())
	assert.Equal(t, "ConfigurationError", ConfigurationErrorCode.String())
	assert.Equal(t, "DependencyError", DependencyErrorCode.String())
	assert.Equal(t, "UnknownError", ErrorCode(99).String())
}

func TestMultipleErrors(t *testing.T) {
	errs := NewMultipleErrors()
	assert.True(t, errs.IsEmpty())
	assert.NoError(t, errs.ErrorOrNil())
	assert.Equal(t, "no errors", errs.Error())

	first := NewServiceNotFoundError("app.cache", "app.warmer", nil)
	errs.Add(first)
	assert.Equal(t, first.Error(), errs.Error())

	errs.Add(NewClassNotFoundError("app.Missing", "app.other"))
	require.Error(t, errs.ErrorOrNil())
	assert.Equal(t, 2, errs.Count())
	assert.Equal(t, DependencyErrorCode, errs.ErrorCode())
	assert.Contains(t, errs.Error(), "multiple errors (2 total)")
	assert.Contains(t, errs.Error(), `2. class "app.Missing" of service "app.other" is not registered`)

	var classErr *ClassNotFoundError
	require.True(t, stderrors.As(errs, &classErr))
	assert.Equal(t, "app.Missing", classErr.Class)
	assert.Contains(t, errs.Context(), "error_1_class")
}

func TestMultipleErrors_NilIsNil(t *testing.T) {
	var errs *MultipleErrors
	assert.NoError(t, errs.ErrorOrNil())
}

func TestUnsupportedFactoryError(t *testing.T) {
	err := NewUnsupportedFactoryError("app.builder", "app.cache", struct{}{})

	assert.Equal(t, ConfigurationErrorCode, err.ErrorCode())
	assert.Equal(t, `cache factory "app.builder" of service "app.cache" does not implement AdapterFactory (this is not supported for now)`, err.Error())
	assert.Equal(t, "struct {}", err.Context()["factory_type"])
	assert.NotEmpty(t, err.Suggestions())
}

func TestServiceNotFoundError(t *testing.T) {
	err := NewServiceNotFoundError("app.cach", "", []string{"app.cache", "other"})
	assert.Equal(t, `service "app.cach" does not exist`, err.Error())
	assert.Equal(t, []string{`Did you mean "app.cache"?`}, err.Suggestions())

	err = NewServiceNotFoundError("zz", "app.warmer", []string{"app.cache"})
	assert.Equal(t, `service "zz" referenced by "app.warmer" does not exist`, err.Error())
	assert.Empty(t, err.Suggestions())
}

func TestClassNotFoundError(t *testing.T) {
	assert.Equal(t, `class "x.Y" is not registered`, NewClassNotFoundError("x.Y", "").Error())
}

func TestCircularReferenceError(t *testing.T) {
	err := NewCircularReferenceError([]string{"a", "b", "a"})
	assert.Equal(t, "circular reference detected: a -> b -> a", err.Error())
	assert.Equal(t, []string{"a", "b", "a"}, err.Path)
}

func TestFrozenContainerError(t *testing.T) {
	err := NewFrozenContainerError("SetDefinition")
	assert.Equal(t, RegistrationErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), "container is compiled and frozen")
}

func TestWrappers(t *testing.T) {
	t.Run("file system", func(t *testing.T) {
		err := WrapFileSystemError("read", "services.yaml", fs.ErrNotExist)
		assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
		assert.Equal(t, "failed to read file 'services.yaml': file does not exist", err.Error())
	})

	t.Run("parse", func(t *testing.T) {
		err := WrapParseError("services.yaml", fmt.Errorf("bad indent"))
		assert.Equal(t, SyntaxErrorCode, err.ErrorCode())
		assert.Equal(t, "failed to parse services.yaml: bad indent", err.Error())
	})

	t.Run("template", func(t *testing.T) {
		err := WrapTemplateError("proxy-type", "execute", fmt.Errorf("nil data"))
		assert.Equal(t, TemplateErrorCode, err.ErrorCode())
		assert.Equal(t, "execute", err.Stage)
		assert.Equal(t, "proxy-type", err.TargetFile)
	})

	t.Run("generate", func(t *testing.T) {
		err := WrapGenerateError("proxy", "cache.MemoryPool", fmt.Errorf("disk full"))
		assert.Equal(t, GenerationErrorCode, err.ErrorCode())
		assert.Equal(t, "failed to generate cache.MemoryPool: disk full", err.Error())
	})

	t.Run("syntax with token", func(t *testing.T) {
		err := NewSyntaxErrorWithToken("unexpected marker", "@", 4)
		assert.Equal(t, "unexpected marker (near token '@')", err.Error())
		assert.Equal(t, 4, err.Position)
	})
}
