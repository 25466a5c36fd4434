// Package pipes rewrites `value | pipe:arg | pipe2` chains into nested host
// language calls. Splitting is quote-aware: a `|` or `:` inside a quoted
// substring never separates, and `||` is always the logical-or operator.
// Unknown pipe names are not errors; they become calls to a same-named
// custom pipe function and are reported to the caller for import
// resolution.
package pipes

import (
	"fmt"
	"strings"
)

// Resolver looks up custom pipes. The transpiler passes its registry
// snapshot; tests pass a plain map.
type Resolver interface {
	PipeFunction(name string) (string, bool)
}

// MapResolver adapts a name-to-function map into a Resolver.
type MapResolver map[string]string

// PipeFunction returns the generated function name for a custom pipe.
func (m MapResolver) PipeFunction(name string) (string, bool) {
	fn, ok := m[name]
	return fn, ok
}

// builtin is a rewrite template for one built-in pipe. It receives the
// already-chained value expression and the raw pipe arguments.
type builtin func(value string, args []string) string

var builtins = map[string]builtin{
	"uppercase": func(v string, _ []string) string {
		return methodCall(v, "toUpperCase")
	},
	"lowercase": func(v string, _ []string) string {
		return methodCall(v, "toLowerCase")
	},
	"titlecase": func(v string, _ []string) string {
		return fmt.Sprintf("%s.replace(/\\w\\S*/g, (w) => w[0].toUpperCase() + w.slice(1).toLowerCase())", chainable(v))
	},
	"slice": func(v string, args []string) string {
		return methodCall(v, "slice", args...)
	},
	"default": func(v string, args []string) string {
		fallback := "''"
		if len(args) > 0 {
			fallback = args[0]
		}
		return fmt.Sprintf("(%s ?? %s)", v, fallback)
	},
	"json": func(v string, _ []string) string {
		return fmt.Sprintf("JSON.stringify(%s)", v)
	},
	"number": func(v string, args []string) string {
		if len(args) > 0 {
			return fmt.Sprintf("Number(%s).toFixed(%s)", v, args[0])
		}
		return fmt.Sprintf("Number(%s).toLocaleString()", v)
	},
	"date": func(v string, args []string) string {
		if len(args) > 0 {
			return fmt.Sprintf("new Date(%s).toLocaleDateString(undefined, %s)", v, args[0])
		}
		return fmt.Sprintf("new Date(%s).toLocaleDateString()", v)
	},
	"currency": func(v string, args []string) string {
		code := "'USD'"
		if len(args) > 0 {
			code = args[0]
		}
		return fmt.Sprintf("Number(%s).toLocaleString(undefined, { style: 'currency', currency: %s })", v, code)
	},
	"percent": func(v string, _ []string) string {
		return fmt.Sprintf("(Number(%s) * 100).toFixed(0) + '%%'", v)
	},
}

// IsBuiltin reports whether name has a fixed rewrite template.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Rewrite folds a pipe chain left to right into nested calls. The custom
// list returns the names of custom pipes the expression used, in order of
// first use. Expressions without a top-level `|` come back unchanged.
func Rewrite(expression string, resolver Resolver) (result string, custom []string) {
	segments := SplitTopLevel(expression, '|')
	if len(segments) == 1 {
		return strings.TrimSpace(expression), nil
	}

	value := strings.TrimSpace(segments[0])
	seen := map[string]bool{}
	for _, seg := range segments[1:] {
		parts := SplitTopLevel(seg, ':')
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		args := make([]string, 0, len(parts)-1)
		for _, a := range parts[1:] {
			args = append(args, strings.TrimSpace(a))
		}

		if fn, ok := builtins[name]; ok {
			value = fn(value, args)
			continue
		}

		fnName := name
		if resolver != nil {
			if resolved, ok := resolver.PipeFunction(name); ok {
				fnName = resolved
			}
		}
		if !seen[name] {
			seen[name] = true
			custom = append(custom, name)
		}
		callArgs := append([]string{value}, args...)
		value = fmt.Sprintf("%s(%s)", fnName, strings.Join(callArgs, ", "))
	}
	return value, custom
}

// SplitTopLevel splits s on sep, ignoring separators inside single or double
// quotes, template literals, and (), [], {} groups. A doubled `||` is never
// a split point for '|'. The transformer shares it for `;` clause splitting
// in structural directive expressions.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth > 0 {
				continue
			}
			if sep == '|' {
				if i+1 < len(s) && s[i+1] == '|' {
					i++ // logical-or, not a pipe
					continue
				}
				if i > 0 && s[i-1] == '|' {
					continue
				}
			}
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// methodCall chains a method onto value, parenthesizing value first when it
// is not a simple expression.
func methodCall(value, method string, args ...string) string {
	return fmt.Sprintf("%s.%s(%s)", chainable(value), method, strings.Join(args, ", "))
}

// chainable wraps value in parentheses unless it is already a simple
// identifier, member access, call, array access, or literal. Anything with
// a top-level binary, comparison, or ternary operator needs the wrapping
// before a method can be chained onto it.
func chainable(value string) string {
	if isSimpleExpression(value) {
		return value
	}
	return "(" + value + ")"
}

// isSimpleExpression reports whether expr is an identifier/member/call/
// array-access chain or a single literal, checked with a small scan rather
// than a host-language parser.
func isSimpleExpression(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}

	i := 0
	// Leading literal or identifier.
	switch {
	case expr[0] == '\'' || expr[0] == '"' || expr[0] == '`':
		end := matchQuote(expr, 0)
		if end < 0 {
			return false
		}
		i = end + 1
	case expr[0] >= '0' && expr[0] <= '9':
		for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
			i++
		}
	case isIdentStart(expr[0]):
		for i < len(expr) && isIdentChar(expr[i]) {
			i++
		}
	case expr[0] == '(' || expr[0] == '[':
		end := matchGroup(expr, 0)
		if end < 0 {
			return false
		}
		i = end + 1
	default:
		return false
	}

	// Chain of .ident, (args), [index].
	for i < len(expr) {
		switch expr[i] {
		case '.':
			i++
			if i >= len(expr) || !isIdentStart(expr[i]) {
				return false
			}
			for i < len(expr) && isIdentChar(expr[i]) {
				i++
			}
		case '(', '[':
			end := matchGroup(expr, i)
			if end < 0 {
				return false
			}
			i = end + 1
		default:
			return false
		}
	}
	return true
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}

// matchQuote returns the index of the closing quote for the quote at start.
func matchQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		if s[i] == q && s[i-1] != '\\' {
			return i
		}
	}
	return -1
}

// matchGroup returns the index of the bracket closing the group opened at
// start, quote-aware.
func matchGroup(s string, start int) int {
	open := s[start]
	var close byte
	switch open {
	case '(':
		close = ')'
	case '[':
		close = ']'
	case '{':
		close = '}'
	}
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
