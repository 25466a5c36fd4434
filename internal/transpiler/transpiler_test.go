package transpiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-lang/sigil/internal/registry"
	"github.com/sigil-lang/sigil/internal/transform"
)

func TestTranspileEmptyInput(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\t\n"} {
		result := Transpile(source, Options{})
		assert.Empty(t, result.Markup)
		assert.Empty(t, result.Warnings)
		assert.False(t, result.HasSlot)
	}
}

func TestTranspileFullTemplate(t *testing.T) {
	source := `
<div class="profile" [class.online]="user.online">
  <img [src]="user.avatar" alt="avatar">
  <h2>{{ user.name | titlecase }}</h2>
  <ul>
    <li *for="let post of user.posts; trackBy: post.id">{{ post.title }}</li>
  </ul>
  <button (click)="refresh()">Refresh</button>
</div>`

	result := Transpile(source, Options{})

	assert.Contains(t, result.Markup, `className={"profile" + (user.online ? " online" : "")}`)
	assert.Contains(t, result.Markup, `<img alt="avatar" src={user.avatar} />`)
	assert.Contains(t, result.Markup, `{user.posts.map((post) => <li key={post.id}>{post.title}</li>)}`)
	assert.Contains(t, result.Markup, `onClick={($event) => refresh()}`)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Imports)
}

func TestTranspileNonEmptyOutput(t *testing.T) {
	// Any input with visible content yields markup, no matter how
	// malformed.
	sources := []string{
		`<div`,
		`</nothing>`,
		`<p title="unterminated>text`,
		`just text`,
		`{{ expr`,
	}
	for _, source := range sources {
		result := Transpile(source, Options{})
		assert.True(t, result.Markup != "" || len(result.Warnings) > 0,
			"source %q should produce markup or a diagnostic", source)
	}
}

func TestTranspileCollectsMetadata(t *testing.T) {
	reg := registry.NewExtensionRegistry()
	reg.RegisterPipe(registry.Pipe{Name: "timeAgo", FunctionName: "timeAgoPipe", ImportPath: "./pipes/time-ago"})
	reg.RegisterDirective(registry.Directive{Name: "tooltip", FunctionName: "tooltipDirective", ImportPath: "./directives/tooltip"})

	source := `
<article #root *tooltip="hint">
  <span>{{ posted | timeAgo }}</span>
  <slot name="footer"></slot>
</article>`

	result := Transpile(source, Options{Extensions: reg.Snapshot()})

	assert.Equal(t, []string{"timeAgo"}, result.UsedPipes)
	assert.Equal(t, []string{"tooltip"}, result.UsedDirectives)
	assert.Equal(t, []string{"root"}, result.TemplateRefs)
	assert.True(t, result.HasSlot)
	assert.Equal(t, []string{"footer"}, result.SlotInfo.NamedSlots)

	symbols := make([]string, len(result.Imports))
	for i, imp := range result.Imports {
		symbols[i] = imp.SymbolName
	}
	assert.ElementsMatch(t, []string{"timeAgoPipe", "tooltipDirective"}, symbols)
}

func TestTranspileLayoutContext(t *testing.T) {
	result := Transpile(`<main><slot></slot></main>`, Options{Context: transform.ContextLayout})

	assert.Equal(t, `<main>{renderCurrentPage()}</main>`, result.Markup)
	require.Len(t, result.Imports, 1)
	assert.Equal(t, "@sigil/runtime", result.Imports[0].ImportPath)
	assert.True(t, result.HasSlot)
}

func TestTranspileSignals(t *testing.T) {
	result := Transpile(
		`<div><p>{{ count }}</p><button (click)="increment()">+</button></div>`,
		Options{Signals: map[string]bool{"count": true}})

	assert.Contains(t, result.Markup, `{count()}`)
	assert.Contains(t, result.Markup, `onClick={($event) => increment()}`)
}

func TestTranspileIsPure(t *testing.T) {
	source := `<li *for="let item of items">{{ item }}</li>`
	first := Transpile(source, Options{})
	second := Transpile(source, Options{})

	// No state leaks between calls: the bare-key discriminator starts
	// fresh each time.
	assert.Equal(t, first.Markup, second.Markup)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestTranspileWarningsCarryLocations(t *testing.T) {
	result := Transpile("<div>\n  <p *if=\"\">x</p>\n</div>", Options{})

	require.NotEmpty(t, result.Warnings)
	found := false
	for _, w := range result.Warnings {
		if w.Location != nil && w.Location.Line == 2 {
			found = true
		}
	}
	assert.True(t, found, "expected a warning located on line 2")
}
