// Package cli renders cachewire failures for terminal users.
package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/cachewire/internal/errors"
)

// DiagnosticReporter prints errors with their location, context and suggestions
type DiagnosticReporter struct {
	out       io.Writer
	verbose   bool
	useColors bool
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{out: out, verbose: verbose}
}

// WithColors turns colored headings on or off
func (r *DiagnosticReporter) WithColors(enabled bool) *DiagnosticReporter {
	r.useColors = enabled
	return r
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	fmt.Fprintf(r.out, "%s %s\n", r.paint(color.FgYellow, "!"), message)
}

// ReportError prints err. A MultipleErrors is reported entry by entry.
func (r *DiagnosticReporter) ReportError(title string, err error) {
	if err == nil {
		return
	}

	heading := "ERROR: " + title
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", r.paint(color.FgRed, heading), strings.Repeat("=", len(heading)))

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		for i, entry := range multi.Errors {
			fmt.Fprintf(r.out, "%d) ", i+1)
			r.report(entry)
		}
		return
	}
	r.report(err)
}

func (r *DiagnosticReporter) report(err error) {
	chain := wireChain(err)

	if len(chain) > 0 && r.verbose {
		fmt.Fprintf(r.out, "Type: %s\n", errors.CodeOf(err))
	}
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	context := make(map[string]interface{})
	var suggestions []string
	var loc errors.SourceLocation
	for _, we := range chain {
		if loc.IsEmpty() {
			loc = we.Location()
		}
		for k, v := range we.Context() {
			if _, seen := context[k]; !seen {
				context[k] = v
			}
		}
		suggestions = appendUnique(suggestions, we.Suggestions()...)
	}

	if !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}
	if r.verbose && len(context) > 0 {
		r.printContext(context)
	}
	if len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(r.out, "Context:")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(k), context[k])
	}
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintln(r.out, "Suggestions:")
	for i, s := range suggestions {
		lines := strings.Split(s, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
}

func (r *DiagnosticReporter) paint(attr color.Attribute, s string) string {
	c := color.New(attr, color.Bold)
	if r.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// wireChain returns the WireErrors along err's single-unwrap chain, outermost first
func wireChain(err error) []errors.WireError {
	var chain []errors.WireError
	for err != nil {
		if we, ok := err.(errors.WireError); ok {
			chain = append(chain, we)
		}
		err = stderrors.Unwrap(err)
	}
	return chain
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		dup := false
		for _, existing := range list {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, item)
		}
	}
	return list
}
