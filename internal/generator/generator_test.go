package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/discovery"
	"github.com/sigil-lang/sigil/internal/logging"
	"github.com/sigil-lang/sigil/internal/transform"
	"github.com/sigil-lang/sigil/internal/transpiler"
)

func testLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LevelError
	return logging.NewLogger(cfg)
}

func TestRenderBasicComponent(t *testing.T) {
	component := discovery.ComponentInfo{Name: "UserCard", TemplatePath: "user-card.component.html"}
	result := transpiler.Result{Markup: `<div className="card">{user.name}</div>`}

	out := Render(component, result)

	assert.Contains(t, out, "export function UserCard() {")
	assert.Contains(t, out, `<div className="card">{user.name}</div>`)
	assert.NotContains(t, out, "import ")
}

func TestRenderImportBlock(t *testing.T) {
	component := discovery.ComponentInfo{Name: "Feed"}
	result := transpiler.Result{
		Markup: `<span>{timeAgoPipe(posted)}</span>`,
		Imports: []transform.Import{
			{SymbolName: "timeAgoPipe", ImportPath: "./pipes/time-ago"},
			{SymbolName: "relativePipe", ImportPath: "./pipes/time-ago"},
			{SymbolName: "renderCurrentPage", ImportPath: "@sigil/runtime"},
		},
	}

	out := Render(component, result)

	assert.Contains(t, out, `import { renderCurrentPage } from "@sigil/runtime";`)
	assert.Contains(t, out, `import { relativePipe, timeAgoPipe } from "./pipes/time-ago";`)
}

func TestRenderSlottedComponentProps(t *testing.T) {
	component := discovery.ComponentInfo{Name: "Card"}
	result := transpiler.Result{
		Markup:  `<div>{props.children}{props.footer}</div>`,
		HasSlot: true,
		SlotInfo: transform.SlotInfo{
			HasDefaultSlot: true,
			NamedSlots:     []string{"footer"},
		},
	}

	out := Render(component, result)
	assert.Contains(t, out, "export function Card(props: { children?: any; footer?: any }) {")
}

func TestRenderMultiRootGetsFragment(t *testing.T) {
	component := discovery.ComponentInfo{Name: "Pair"}
	result := transpiler.Result{Markup: "<h1>a</h1><p>b</p>"}

	out := Render(component, result)
	assert.Contains(t, out, "<>")
	assert.Contains(t, out, "</>")
}

func TestRenderSingleRootNoFragment(t *testing.T) {
	component := discovery.ComponentInfo{Name: "One"}
	result := transpiler.Result{Markup: "<div><p>a</p><p>b</p></div>"}

	out := Render(component, result)
	assert.NotContains(t, out, "<>")
}

func TestFunctionName(t *testing.T) {
	testCases := []struct {
		component discovery.ComponentInfo
		want      string
	}{
		{discovery.ComponentInfo{Name: "UserCard"}, "UserCard"},
		{discovery.ComponentInfo{Name: "user-card"}, "UserCard"},
		{discovery.ComponentInfo{Selector: "app-nav-bar"}, "AppNavBar"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FunctionName(tc.component))
	}
}

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Output.Dir = dir
	cfg.Output.Extension = ".tsx"

	gen := New(cfg, testLogger())
	component := discovery.ComponentInfo{
		Name:         "Hello",
		TemplatePath: filepath.Join("src", "hello.component.html"),
	}
	result := transpiler.Result{Markup: "<p>hi</p>"}

	outPath, err := gen.Generate(component, result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello.tsx"), outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export function Hello() {")
	assert.Contains(t, string(data), "<p>hi</p>")
}
