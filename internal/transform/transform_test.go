package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/parser"
	"github.com/sigil-lang/sigil/internal/registry"
)

type renderOpts struct {
	extensions *registry.Snapshot
	context    RenderContext
	signals    map[string]bool
}

func render(t *testing.T, source string, opts renderOpts) (string, *Transformer, *diag.Collector) {
	t.Helper()
	warnings := diag.NewCollector()
	doc := parser.Parse(source, warnings)
	tr := New(opts.extensions, opts.context, opts.signals, warnings)
	return tr.Document(doc), tr, warnings
}

func renderSimple(t *testing.T, source string) string {
	t.Helper()
	out, _, _ := render(t, source, renderOpts{})
	return out
}

func TestConditionalRendering(t *testing.T) {
	assert.Equal(t,
		`{loggedIn && <div>Welcome</div>}`,
		renderSimple(t, `<div *if="loggedIn">Welcome</div>`))
}

func TestConditionalWithElse(t *testing.T) {
	assert.Equal(t,
		`{loggedIn ? <div>Welcome</div> : <GuestView />}`,
		renderSimple(t, `<div *if="loggedIn" *else="GuestView">Welcome</div>`))
}

func TestOrphanElse(t *testing.T) {
	out, _, warnings := render(t, `<div *else="Fallback">text</div>`, renderOpts{})
	assert.Equal(t, `<div>text</div>`, out)
	assert.Contains(t, codes(warnings), diag.CodeOrphanElse)
}

func TestEmptyConditionRendersUnconditionally(t *testing.T) {
	out, _, warnings := render(t, `<div *if="">text</div>`, renderOpts{})
	assert.Equal(t, `<div>text</div>`, out)
	assert.Contains(t, codes(warnings), diag.CodeEmptyCondition)
}

func TestLoopWithTrackBy(t *testing.T) {
	assert.Equal(t,
		`{users.map((user) => <li key={user.id}>{user.name}</li>)}`,
		renderSimple(t, `<li *for="let user of users; trackBy: user.id">{{ user.name }}</li>`))
}

func TestLoopWithIndex(t *testing.T) {
	assert.Equal(t,
		`{items.map((item, i: number) => <li key={i}>{item}</li>)}`,
		renderSimple(t, `<li *for="let item of items; index as i">{{ item }}</li>`))
}

func TestLoopLetIndexClause(t *testing.T) {
	assert.Equal(t,
		`{items.map((item, idx: number) => <li key={idx}>x</li>)}`,
		renderSimple(t, `<li *for="let item of items; let idx = index">x</li>`))
}

func TestLoopBareKeyDiscriminator(t *testing.T) {
	out := renderSimple(t,
		`<ul><li *for="let item of first">a</li><li *for="let item of second">b</li></ul>`)
	assert.Contains(t, out, `key={item}`)
	assert.Contains(t, out, `key={"2_" + item}`)
}

func TestLoopDiagnostics(t *testing.T) {
	t.Run("missing let", func(t *testing.T) {
		out, _, warnings := render(t, `<li *for="x of xs">v</li>`, renderOpts{})
		assert.Equal(t, `{xs.map((x) => <li key={x}>v</li>)}`, out)
		assert.Contains(t, codes(warnings), diag.CodeForMissingLet)
	})
	t.Run("in instead of of", func(t *testing.T) {
		out, _, warnings := render(t, `<li *for="let x in xs">v</li>`, renderOpts{})
		assert.Contains(t, out, "xs.map")
		assert.Contains(t, codes(warnings), diag.CodeForInsteadOfOf)
	})
	t.Run("trackBy needs a clause boundary", func(t *testing.T) {
		out, _, warnings := render(t, `<li *for="let x of xs; trackByFoo: x">v</li>`, renderOpts{})
		assert.Equal(t, `{xs.map((x) => <li key={x}>v</li>)}`, out)
		assert.Contains(t, codes(warnings), diag.CodeForUnknownClause)
	})
	t.Run("malformed keeps element", func(t *testing.T) {
		out, _, warnings := render(t, `<li *for="let x">v</li>`, renderOpts{})
		assert.Equal(t, `<li>v</li>`, out)
		assert.Contains(t, codes(warnings), diag.CodeForMalformed)
	})
}

func TestConditionWrapsLoop(t *testing.T) {
	out := renderSimple(t, `<li *if="show" *for="let x of xs; trackBy: x">v</li>`)
	assert.Equal(t, `{show && xs.map((x) => <li key={x}>v</li>)}`, out)
}

func TestClassMerging(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			"static only",
			`<div class="card big">x</div>`,
			`<div className="card big">x</div>`,
		},
		{
			"static plus conditional",
			`<div class="base" [class.active]="isOn">x</div>`,
			`<div className={"base" + (isOn ? " active" : "")}>x</div>`,
		},
		{
			"two conditionals",
			`<div [class.a]="p" [class.b]="q">x</div>`,
			`<div className={(p ? "a" : "") + (q ? " b" : "")}>x</div>`,
		},
		{
			"literal true folds to static",
			`<div class="card" [class.dark]="true">x</div>`,
			`<div className="card dark">x</div>`,
		},
		{
			"whole class binding",
			`<div class="base" [class]="extra">x</div>`,
			`<div className={"base " + (extra)}>x</div>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderSimple(t, tc.source))
		})
	}
}

func TestStyleMerging(t *testing.T) {
	assert.Equal(t,
		"<div style={{width: `${w}px`, color: c}}>x</div>",
		renderSimple(t, `<div [style.width.px]="w" [style.color]="c">x</div>`))

	assert.Equal(t,
		`<div style={base}>x</div>`,
		renderSimple(t, `<div [style]="base">x</div>`))

	assert.Equal(t,
		`<div style={{...(base), margin: m}}>x</div>`,
		renderSimple(t, `<div [style]="base" [style.margin]="m">x</div>`))
}

func TestStyleKebabToCamel(t *testing.T) {
	assert.Equal(t,
		`<div style={{backgroundColor: c}}>x</div>`,
		renderSimple(t, `<div [style.background-color]="c">x</div>`))
}

func TestTwoWayFlavors(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			"text input",
			`<input [(value)]="name" />`,
			`<input value={name} onInput={($event) => name = $event.target.value} />`,
		},
		{
			"checkbox",
			`<input type="checkbox" [(checked)]="agree" />`,
			`<input type="checkbox" checked={agree} onChange={($event) => agree = $event.target.checked} />`,
		},
		{
			"select",
			`<select [(value)]="choice"></select>`,
			`<select value={choice} onChange={($event) => choice = $event.target.value}></select>`,
		},
		{
			"textarea",
			`<textarea [(value)]="bio"></textarea>`,
			`<textarea value={bio} onInput={($event) => bio = $event.target.value}></textarea>`,
		},
		{
			"component prop",
			`<user-card [(rating)]="score"></user-card>`,
			`<user-card rating={score} onRatingChange={($event) => score = $event}></user-card>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderSimple(t, tc.source))
		})
	}
}

func TestSignalAccessors(t *testing.T) {
	signals := map[string]bool{"count": true, "name": true}

	out, _, _ := render(t, `<p>{{ count }}</p>`, renderOpts{signals: signals})
	assert.Equal(t, `<p>{count()}</p>`, out)

	out, _, _ = render(t, `<p>{{ name.length }}</p>`, renderOpts{signals: signals})
	assert.Equal(t, `<p>{name().length}</p>`, out)

	// Already-call forms are left alone.
	out, _, _ = render(t, `<p>{{ count() }}</p>`, renderOpts{signals: signals})
	assert.Equal(t, `<p>{count()}</p>`, out)

	// Non-signal roots are untouched.
	out, _, _ = render(t, `<p>{{ other }}</p>`, renderOpts{signals: signals})
	assert.Equal(t, `<p>{other}</p>`, out)
}

func TestSignalTwoWay(t *testing.T) {
	out, _, _ := render(t, `<input [(value)]="name" />`, renderOpts{signals: map[string]bool{"name": true}})
	assert.Equal(t,
		`<input value={name()} onInput={($event) => name.set($event.target.value)} />`,
		out)
}

func TestEventHandlers(t *testing.T) {
	assert.Equal(t,
		`<button onClick={($event) => save()}>Go</button>`,
		renderSimple(t, `<button (click)="save()">Go</button>`))

	// Bare function names are referenced directly.
	assert.Equal(t,
		`<button onClick={handler}>Go</button>`,
		renderSimple(t, `<button (click)="handler">Go</button>`))

	// Modifier suffixes map to the base event.
	assert.Equal(t,
		`<input onKeyup={($event) => submit($event)} />`,
		renderSimple(t, `<input (keyup.enter)="submit($event)" />`))
}

func TestPropertyAndAttributeBindings(t *testing.T) {
	assert.Equal(t,
		`<a href={url}>x</a>`,
		renderSimple(t, `<a [href]="url">x</a>`))

	assert.Equal(t,
		`<div aria-label={label}>x</div>`,
		renderSimple(t, `<div [attr.aria-label]="label">x</div>`))
}

func TestComparisonOperatorsInBindings(t *testing.T) {
	// Host expressions are opaque strings, so a `>` inside a quoted value
	// must survive every binding flavor intact.
	assert.Equal(t,
		`{count > 5 && <div>Big</div>}`,
		renderSimple(t, `<div *if="count > 5">Big</div>`))

	assert.Equal(t,
		`<button onClick={($event) => total = total > 9 ? 0 : total}>x</button>`,
		renderSimple(t, `<button (click)="total = total > 9 ? 0 : total">x</button>`))

	assert.Equal(t,
		`<div hidden={count > limit}>x</div>`,
		renderSimple(t, `<div [hidden]="count > limit">x</div>`))
}

func TestBindingWarningsCarryLocation(t *testing.T) {
	_, _, warnings := render(t, "\n<span [title]=\"v | mystery\">x</span>", renderOpts{})

	require.Contains(t, codes(warnings), diag.CodeUnknownPipe)
	for _, w := range warnings.Warnings() {
		if w.Code == diag.CodeUnknownPipe {
			require.NotNil(t, w.Location)
			assert.Equal(t, 2, w.Location.Line)
		}
	}
}

func TestDangerousSinkWarnsButEmits(t *testing.T) {
	out, _, warnings := render(t, `<div [innerHTML]="html"></div>`, renderOpts{})
	assert.Equal(t, `<div innerHTML={html}></div>`, out)
	assert.Contains(t, codes(warnings), diag.CodeDangerousSink)
}

func TestTemplateRefs(t *testing.T) {
	out, tr, _ := render(t, `<input #box /><canvas #surface></canvas>`, renderOpts{})
	assert.Contains(t, out, `ref={box}`)
	assert.Contains(t, out, `ref={surface}`)
	assert.Equal(t, []string{"box", "surface"}, tr.TemplateRefs())
}

func TestComponentSlots(t *testing.T) {
	out, tr, _ := render(t, `<div><slot></slot></div>`, renderOpts{})
	assert.Equal(t, `<div>{props.children}</div>`, out)
	assert.True(t, tr.SlotInfo().HasDefaultSlot)

	out, tr, _ = render(t, `<slot name="header"></slot>`, renderOpts{})
	assert.Equal(t, `{props.header}`, out)
	assert.Equal(t, []string{"header"}, tr.SlotInfo().NamedSlots)

	out, _, _ = render(t, `<slot>fallback</slot>`, renderOpts{})
	assert.Equal(t, `{props.children ?? <>fallback</>}`, out)
}

func TestLayoutSlot(t *testing.T) {
	out, tr, _ := render(t, `<main><slot></slot></main>`, renderOpts{context: ContextLayout})
	assert.Equal(t, `<main>{renderCurrentPage()}</main>`, out)

	imports := tr.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, "renderCurrentPage", imports[0].SymbolName)
	assert.Equal(t, "@sigil/runtime", imports[0].ImportPath)
}

func TestCustomDirective(t *testing.T) {
	reg := registry.NewExtensionRegistry()
	reg.RegisterDirective(registry.Directive{
		Name:         "highlight",
		FunctionName: "highlightDirective",
		ImportPath:   "./directives/highlight",
	})
	snap := reg.Snapshot()

	out, tr, _ := render(t, `<p *highlight="color">text</p>`, renderOpts{extensions: snap})
	assert.Equal(t, `{highlightDirective(color, <p>text</p>)}`, out)
	assert.Equal(t, []string{"highlight"}, tr.Usage().Directives())

	imports := tr.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, "highlightDirective", imports[0].SymbolName)
}

func TestUnknownDirectivePassesThrough(t *testing.T) {
	out, _, warnings := render(t, `<p *shimmer>text</p>`, renderOpts{})
	assert.Equal(t, `{shimmer(<p>text</p>)}`, out)
	assert.Contains(t, codes(warnings), diag.CodeUnknownDirective)
}

func TestCustomPipeUsageAndImports(t *testing.T) {
	reg := registry.NewExtensionRegistry()
	reg.RegisterPipe(registry.Pipe{
		Name:         "timeAgo",
		FunctionName: "timeAgoPipe",
		ImportPath:   "./pipes/time-ago",
	})
	snap := reg.Snapshot()

	out, tr, _ := render(t, `<span>{{ posted | timeAgo }}</span>`, renderOpts{extensions: snap})
	assert.Equal(t, `<span>{timeAgoPipe(posted)}</span>`, out)
	assert.Equal(t, []string{"timeAgo"}, tr.Usage().Pipes())
	require.Len(t, tr.Imports(), 1)
}

func TestUnknownPipeInfoDiagnostic(t *testing.T) {
	_, _, warnings := render(t, `<span>{{ v | mystery }}</span>`, renderOpts{})
	assert.Contains(t, codes(warnings), diag.CodeUnknownPipe)
	for _, w := range warnings.Warnings() {
		if w.Code == diag.CodeUnknownPipe {
			assert.Equal(t, diag.LevelInfo, w.Level)
		}
	}
}

func TestCommentsDropped(t *testing.T) {
	assert.Equal(t, `<div>keep</div>`, renderSimple(t, `<!-- gone --><div>keep</div>`))
}

func TestWhitespaceOnlyTextDropped(t *testing.T) {
	assert.Equal(t,
		`<ul><li>a</li><li>b</li></ul>`,
		renderSimple(t, "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>"))
}

func codes(c *diag.Collector) []string {
	var out []string
	for _, w := range c.Warnings() {
		out = append(out, w.Code)
	}
	return out
}
