package transform

import (
	"fmt"
	"strings"

	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/pipes"
)

// parseFor parses a `*for` expression of the grammar
//
//	["let"] item ("of"|"in") iterable (";" clause)*
//
// with clauses `index as i`, `let i = index`, and `trackBy: expr`. Missing
// `let` and `in` instead of `of` are tolerated with a diagnostic. The
// second return is false only when no item variable or iterable could be
// recovered at all.
func (t *Transformer) parseFor(expr string, loc *ast.SourceLocation) (ast.ForDirectiveInfo, bool) {
	var info ast.ForDirectiveInfo

	clauses := pipes.SplitTopLevel(expr, ';')
	head := strings.Fields(clauses[0])

	if len(head) > 0 && head[0] == "let" {
		head = head[1:]
	} else {
		t.warnings.Add(diag.CodeForMissingLet, "*for is missing 'let' before the item variable", loc)
	}

	if len(head) < 3 {
		t.warnings.Addf(diag.CodeForMalformed, loc, "*for expression %q does not match 'let item of iterable'", expr)
		return info, false
	}

	info.ItemVar = head[0]
	switch head[1] {
	case "of":
	case "in":
		t.warnings.Add(diag.CodeForInsteadOfOf, "*for uses 'in' where 'of' is expected", loc)
	default:
		t.warnings.Addf(diag.CodeForMalformed, loc, "*for expression %q is missing 'of'", expr)
		return info, false
	}
	info.IterableExpr = strings.Join(head[2:], " ")

	for _, raw := range clauses[1:] {
		clause := strings.TrimSpace(raw)
		if clause == "" {
			continue
		}
		switch {
		case hasClauseKeyword(clause, "trackBy"):
			rest := strings.TrimPrefix(clause, "trackBy")
			rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
			if rest == "" {
				t.warnings.Add(diag.CodeForUnknownClause, "trackBy clause has no expression", loc)
				continue
			}
			info.TrackBy = rest
		case parseIndexAs(clause) != "":
			info.IndexVar = parseIndexAs(clause)
		case parseLetIndex(clause) != "":
			info.IndexVar = parseLetIndex(clause)
		default:
			t.warnings.Addf(diag.CodeForUnknownClause, loc, "unknown *for clause %q", clause)
		}
	}

	return info, true
}

// hasClauseKeyword reports whether clause starts with kw followed by a
// clause boundary, so `trackByFoo: x` is not read as a trackBy clause.
func hasClauseKeyword(clause, kw string) bool {
	if !strings.HasPrefix(clause, kw) {
		return false
	}
	rest := clause[len(kw):]
	return rest == "" || rest[0] == ':' || rest[0] == ' ' || rest[0] == '\t'
}

// parseIndexAs matches `index as ident`.
func parseIndexAs(clause string) string {
	fields := strings.Fields(clause)
	if len(fields) == 3 && fields[0] == "index" && fields[1] == "as" {
		return fields[2]
	}
	return ""
}

// parseLetIndex matches `let ident = index`, with or without spaces around
// the equals sign.
func parseLetIndex(clause string) string {
	rest, ok := strings.CutPrefix(clause, "let ")
	if !ok {
		return ""
	}
	name, value, ok := strings.Cut(rest, "=")
	if !ok {
		return ""
	}
	if strings.TrimSpace(value) != "index" {
		return ""
	}
	return strings.TrimSpace(name)
}

// loopKey picks the key expression for a *for element. Precedence is the
// trackBy expression, then the explicit index variable, then the item
// variable itself. When the same bare item variable keys more than one loop
// in a compilation, later loops get an integer discriminator so keys stay
// unique.
func (t *Transformer) loopKey(info ast.ForDirectiveInfo) string {
	if info.TrackBy != "" {
		return info.TrackBy
	}
	if info.IndexVar != "" {
		return info.IndexVar
	}
	t.bareKeys[info.ItemVar]++
	if n := t.bareKeys[info.ItemVar]; n > 1 {
		return fmt.Sprintf("\"%d_\" + %s", n, info.ItemVar)
	}
	return info.ItemVar
}

// renderLoop wraps already-rendered element markup in the iterable's map
// call. An explicit index variable is annotated as numeric at the call
// site.
func renderLoop(info ast.ForDirectiveInfo, iterable, body string) string {
	params := info.ItemVar
	if info.IndexVar != "" {
		params += ", " + info.IndexVar + ": number"
	}
	return fmt.Sprintf("%s.map((%s) => %s)", iterable, params, body)
}
