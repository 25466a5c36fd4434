//go:build property
// +build property

package transpiler

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTranspileProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	identGen := gen.RegexMatch(`[a-z][a-z0-9]{0,7}`)
	textGen := gen.RegexMatch(`[A-Za-z0-9 .,]{1,24}`)

	voidNames := map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"source": true, "track": true, "wbr": true,
	}

	properties.Property("well-formed elements produce markup", prop.ForAll(
		func(tag, text string) bool {
			if voidNames[tag] {
				return true
			}
			result := Transpile("<"+tag+">"+text+"</"+tag+">", Options{})
			return result.Markup != "" && len(result.Warnings) == 0
		},
		identGen, textGen,
	))

	properties.Property("transpilation is deterministic", prop.ForAll(
		func(tag, cond string) bool {
			source := `<` + tag + ` *if="` + cond + `">{{ ` + cond + ` }}</` + tag + `>`
			first := Transpile(source, Options{})
			second := Transpile(source, Options{})
			return first.Markup == second.Markup &&
				len(first.Warnings) == len(second.Warnings)
		},
		identGen, identGen,
	))

	properties.Property("void elements come back self-closed", prop.ForAll(
		func(src string) bool {
			result := Transpile(`<img src="`+src+`">`, Options{})
			return strings.Contains(result.Markup, "/>")
		},
		identGen,
	))

	properties.Property("plain text passes through untouched", prop.ForAll(
		func(text string) bool {
			result := Transpile(text, Options{})
			return strings.Contains(result.Markup, strings.TrimSpace(text))
		},
		textGen,
	))

	properties.TestingRun(t)
}
