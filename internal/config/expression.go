package config

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/errors"
)

// Argument strings in a services file use a small expression language:
//
//	@id       reference to service id
//	@?id      optional reference, nil when id does not exist
//	%name%    parameter name (a whole-string parameter keeps its type)
//	a%name%b  string interpolation of a parameter
//	@@ %%     literal "@" and "%"

type argumentAST struct {
	Reference *referenceAST `parser:"  @@"`
	Parts     []*partAST    `parser:"| @@*"`
}

type referenceAST struct {
	Marker string `parser:"@RefMarker"`
	ID     string `parser:"@Word"`
}

type partAST struct {
	EscapedAt      bool    `parser:"  @EscapedAt"`
	EscapedPercent bool    `parser:"| @EscapedPercent"`
	Param          *string `parser:"| @Param"`
	Text           *string `parser:"| @(Word | Text | RefMarker | Percent)"`
}

var argumentParser = participle.MustBuild[argumentAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "EscapedAt", Pattern: `@@`},
		{Name: "EscapedPercent", Pattern: `%%`},
		{Name: "RefMarker", Pattern: `@\??`},
		{Name: "Param", Pattern: `%[A-Za-z0-9_.\-]+%`},
		{Name: "Percent", Pattern: `%`},
		{Name: "Word", Pattern: `[A-Za-z0-9_][A-Za-z0-9_.\-]*`},
		{Name: "Text", Pattern: `[^@%]+`},
	})),
	participle.UseLookahead(2),
)

// ParameterLookup resolves a parameter for string interpolation.
type ParameterLookup func(name string) (any, bool)

// ParseArgument turns one argument string into a container value: a
// container.Reference, a container.Parameter or a plain string.
func ParseArgument(s string, params ParameterLookup) (any, error) {
	if !strings.ContainsAny(s, "@%") {
		return s, nil
	}

	ast, err := argumentParser.ParseString("", s)
	if err != nil {
		return nil, syntaxError(s, err)
	}

	if ref := ast.Reference; ref != nil {
		return container.Reference{ID: ref.ID, Optional: ref.Marker == "@?"}, nil
	}

	if len(ast.Parts) == 1 && ast.Parts[0].Param != nil {
		return container.Parameter{Name: paramName(*ast.Parts[0].Param)}, nil
	}

	var b strings.Builder
	for _, part := range ast.Parts {
		switch {
		case part.EscapedAt:
			b.WriteByte('@')
		case part.EscapedPercent:
			b.WriteByte('%')
		case part.Param != nil:
			name := paramName(*part.Param)
			var value any
			ok := false
			if params != nil {
				value, ok = params(name)
			}
			if !ok {
				return nil, errors.ConfigurationError("parameters", fmt.Sprintf("parameter %q used in %q is not defined", name, s))
			}
			if _, nested := value.(map[string]any); nested {
				return nil, errors.ConfigurationError("parameters", fmt.Sprintf("parameter %q is a map and cannot be interpolated into %q", name, s))
			}
			fmt.Fprint(&b, value)
		case part.Text != nil:
			b.WriteString(*part.Text)
		}
	}
	return b.String(), nil
}

// ParseValue applies ParseArgument to every string inside a decoded YAML value.
func ParseValue(v any, params ParameterLookup) (any, error) {
	switch val := v.(type) {
	case string:
		return ParseArgument(val, params)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			parsed, err := ParseValue(item, params)
			if err != nil {
				return nil, err
			}
			out[i] = parsed
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			parsed, err := ParseValue(item, params)
			if err != nil {
				return nil, err
			}
			out[k] = parsed
		}
		return out, nil
	default:
		return v, nil
	}
}

func paramName(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "%"), "%")
}

func syntaxError(input string, err error) error {
	token, pos := "", 0
	if perr, ok := err.(participle.Error); ok {
		pos = perr.Position().Offset
		if pos < len(input) {
			token = input[pos:]
		}
	}
	serr := errors.NewSyntaxErrorWithToken(fmt.Sprintf("invalid argument expression %q", input), token, pos)
	serr.WithCause(err)
	return serr
}
