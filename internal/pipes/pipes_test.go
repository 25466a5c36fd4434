package pipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteBuiltins(t *testing.T) {
	testCases := []struct {
		name string
		expr string
		want string
	}{
		{"no pipe", "user.name", "user.name"},
		{"uppercase", "text | uppercase", "text.toUpperCase()"},
		{"lowercase", "text | lowercase", "text.toLowerCase()"},
		{"chain", "text | uppercase | slice:0:5", "text.toUpperCase().slice(0, 5)"},
		{"default with arg", "value | default:'n/a'", "(value ?? 'n/a')"},
		{"default bare", "value | default", "(value ?? '')"},
		{"json", "state | json", "JSON.stringify(state)"},
		{"number fixed", "price | number:2", "Number(price).toFixed(2)"},
		{"date", "created | date", "new Date(created).toLocaleDateString()"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, custom := Rewrite(tc.expr, nil)
			assert.Equal(t, tc.want, got)
			assert.Empty(t, custom)
		})
	}
}

func TestRewriteQuoteSafety(t *testing.T) {
	got, custom := Rewrite(`value | default:'a|b'`, nil)
	assert.Equal(t, `(value ?? 'a|b')`, got)
	assert.Empty(t, custom)

	got, _ = Rewrite(`label | default:"x:y"`, nil)
	assert.Equal(t, `(label ?? "x:y")`, got)
}

func TestRewriteLogicalOrIsNotAPipe(t *testing.T) {
	got, custom := Rewrite("a || b", nil)
	assert.Equal(t, "a || b", got)
	assert.Empty(t, custom)

	got, _ = Rewrite("a || b | uppercase", nil)
	assert.Equal(t, "(a || b).toUpperCase()", got)
}

func TestRewriteCustomPipes(t *testing.T) {
	resolver := MapResolver{"timeAgo": "timeAgoPipe"}

	got, custom := Rewrite("posted | timeAgo", resolver)
	assert.Equal(t, "timeAgoPipe(posted)", got)
	assert.Equal(t, []string{"timeAgo"}, custom)

	// Unresolved names pass through as same-named calls and are still
	// reported.
	got, custom = Rewrite("posted | relative:'short'", resolver)
	assert.Equal(t, "relative(posted, 'short')", got)
	assert.Equal(t, []string{"relative"}, custom)
}

func TestRewriteCustomReportedOnce(t *testing.T) {
	_, custom := Rewrite("a | mark | mark", MapResolver{})
	assert.Equal(t, []string{"mark"}, custom)
}

func TestRewriteChainsParenthesizeComplexValues(t *testing.T) {
	got, _ := Rewrite("a + b | uppercase", nil)
	assert.Equal(t, "(a + b).toUpperCase()", got)

	// Simple member and call chains stay bare.
	got, _ = Rewrite("user.name | uppercase", nil)
	assert.Equal(t, "user.name.toUpperCase()", got)

	got, _ = Rewrite("items[0].label | uppercase", nil)
	assert.Equal(t, "items[0].label.toUpperCase()", got)
}

func TestSplitTopLevel(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		sep  byte
		want []string
	}{
		{"plain", "a|b|c", '|', []string{"a", "b", "c"}},
		{"quoted pipe", "'a|b'|c", '|', []string{"'a|b'", "c"}},
		{"grouped", "f(a; b); c", ';', []string{"f(a; b)", " c"}},
		{"logical or", "a||b|c", '|', []string{"a||b", "c"}},
		{"no separator", "abc", '|', []string{"abc"}},
		{"template literal", "`x|y`|z", '|', []string{"`x|y`", "z"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitTopLevel(tc.in, tc.sep))
		})
	}
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("uppercase"))
	assert.True(t, IsBuiltin("currency"))
	assert.False(t, IsBuiltin("timeAgo"))
}
