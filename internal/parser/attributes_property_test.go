//go:build property
// +build property

package parser

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestClassificationProperties checks invariants of the attribute
// classifier over generated names.
func TestClassificationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	identGen := gen.RegexMatch(`[a-z][a-zA-Z0-9]{0,11}`)

	properties.Property("classification is stable", prop.ForAll(
		func(name string) bool {
			first := Classify(name)
			second := Classify(first.Shell())
			return first == second
		},
		gen.OneGenOf(
			identGen,
			identGen.Map(func(s string) string { return "#" + s }),
			identGen.Map(func(s string) string { return "*" + s }),
			identGen.Map(func(s string) string { return "[" + s + "]" }),
			identGen.Map(func(s string) string { return "[(" + s + ")]" }),
			identGen.Map(func(s string) string { return "(" + s + ")" }),
		),
	))

	properties.Property("every name gets exactly one category", prop.ForAll(
		func(name string) bool {
			kind := Classify(name).Kind
			return kind >= AttrStandard && kind <= AttrEvent
		},
		gen.AnyString(),
	))

	properties.Property("shell reconstructs the raw name", prop.ForAll(
		func(name string) bool {
			return Classify("["+name+"]").Shell() == "["+name+"]"
		},
		identGen,
	))

	properties.TestingRun(t)
}
