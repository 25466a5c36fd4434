// Package diag collects non-fatal diagnostics produced while compiling a
// template. Warnings are accumulated per compilation call and returned with
// the output; they never abort a compile.
package diag

import (
	"fmt"

	"github.com/sigil-lang/sigil/internal/ast"
)

// Level classifies a warning's severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Warning codes.
const (
	CodeEmptyCondition    = "SIGIL_EMPTY_CONDITION"
	CodeEmptyBinding      = "SIGIL_EMPTY_BINDING"
	CodeForMissingLet     = "SIGIL_FOR_MISSING_LET"
	CodeForInsteadOfOf    = "SIGIL_FOR_IN_NOT_OF"
	CodeForUnknownClause  = "SIGIL_FOR_UNKNOWN_CLAUSE"
	CodeForMalformed      = "SIGIL_FOR_MALFORMED"
	CodeOrphanElse        = "SIGIL_ORPHAN_ELSE"
	CodeDangerousSink     = "SIGIL_DANGEROUS_SINK"
	CodeUnterminatedQuote = "SIGIL_UNTERMINATED_QUOTE"
	CodeUnclosedTag       = "SIGIL_UNCLOSED_TAG"
	CodeStrayCloseTag     = "SIGIL_STRAY_CLOSE_TAG"
	CodeUnknownPipe       = "SIGIL_UNKNOWN_PIPE"
	CodeUnknownDirective  = "SIGIL_UNKNOWN_DIRECTIVE"
	CodeMissingAlt        = "SIGIL_A11Y_MISSING_ALT"
	CodeUnlabeledControl  = "SIGIL_A11Y_UNLABELED_CONTROL"
)

// Warning is a single diagnostic. Location is nil when the issue has no
// usable source position.
type Warning struct {
	Level    Level
	Code     string
	Message  string
	Location *ast.SourceLocation
}

func (w Warning) String() string {
	if w.Location != nil {
		return fmt.Sprintf("[%s] %s:%d:%d %s", w.Code, w.Level, w.Location.Line, w.Location.Column, w.Message)
	}
	return fmt.Sprintf("[%s] %s %s", w.Code, w.Level, w.Message)
}

// Collector accumulates warnings for one compilation call. The zero value is
// ready to use. Collectors are not safe for concurrent use; each compile owns
// its own.
type Collector struct {
	warnings []Warning
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a warning-level diagnostic.
func (c *Collector) Add(code, message string, loc *ast.SourceLocation) {
	c.warnings = append(c.warnings, Warning{
		Level:    LevelWarning,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// AddLevel appends a diagnostic at an explicit level.
func (c *Collector) AddLevel(level Level, code, message string, loc *ast.SourceLocation) {
	c.warnings = append(c.warnings, Warning{
		Level:    level,
		Code:     code,
		Message:  message,
		Location: loc,
	})
}

// Addf appends a warning with a formatted message.
func (c *Collector) Addf(code string, loc *ast.SourceLocation, format string, args ...interface{}) {
	c.Add(code, fmt.Sprintf(format, args...), loc)
}

// Warnings returns the accumulated diagnostics in insertion order.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}

// HasWarnings reports whether any diagnostic was collected.
func (c *Collector) HasWarnings() bool {
	return len(c.warnings) > 0
}

// Count returns the number of collected diagnostics.
func (c *Collector) Count() int {
	return len(c.warnings)
}
