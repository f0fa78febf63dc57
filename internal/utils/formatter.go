package utils

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// FormatGoCode formats Go source and fixes its import block like goimports
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	return imports.Process(filename, source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

// FormatGoCodeString formats Go source code from a string and returns a string
func FormatGoCodeString(filename, source string) (string, error) {
	formatted, err := FormatGoCode(filename, []byte(source))
	if err != nil {
		// If formatting fails, try to parse to see if it's valid Go
		if parseErr := ValidateGoCode(source); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
		}
		return source, err
	}
	return string(formatted), nil
}

// FormatAndWriteGoFile formats Go code and writes it to a file, creating parent directories
func FormatAndWriteGoFile(filename string, code string) error {
	formatted, err := FormatGoCodeString(filename, code)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", filename, err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	return os.WriteFile(filename, []byte(formatted), 0644)
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
