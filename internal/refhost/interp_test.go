package refhost

import (
	"testing"

	"github.com/dgraham/stache"
)

func compile(t *testing.T, name, src string) *stache.Template {
	t.Helper()
	tmpl, err := stache.CompileSource(name, src)
	if err != nil {
		t.Fatalf("CompileSource(%q): %v", name, err)
	}
	return tmpl
}

func render(t *testing.T, templates []*stache.Template, name string, ctx interface{}) string {
	t.Helper()
	r := NewRenderer(templates)
	out, err := r.Render(name, ctx)
	if err != nil {
		t.Fatalf("Render(%q): %v", name, err)
	}
	return out
}

func TestHelloWorld(t *testing.T) {
	tmpl := compile(t, "t", "Hello {{name}}!")
	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{"name": "world"})
	if got != "Hello world!" {
		t.Fatalf("want %q, got %q", "Hello world!", got)
	}
}

func TestDottedLookupAndMissingKey(t *testing.T) {
	tmpl := compile(t, "t", "<strong>{{name.login}}</strong>")

	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{
		"name": map[string]interface{}{"login": "hubot"},
	})
	if got != "<strong>hubot</strong>" {
		t.Fatalf("want hubot rendered, got %q", got)
	}

	got = render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{})
	if got != "<strong></strong>" {
		t.Fatalf("want empty lookup to render as nothing, got %q", got)
	}
}

func TestImplicitIteratorOverList(t *testing.T) {
	tmpl := compile(t, "t", "{{#items}}- {{.}}\n{{/items}}")
	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{
		"items": []string{"a", "b"},
	})
	if got != "- a\n- b\n" {
		t.Fatalf("want %q, got %q", "- a\n- b\n", got)
	}
}

func TestInvertedDualityForEmptyAndNonEmptyList(t *testing.T) {
	tmpl := compile(t, "t", "{{^empty}}none{{/empty}}")

	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{"empty": []string{}})
	if got != "none" {
		t.Fatalf("want %q for an empty list, got %q", "none", got)
	}

	got = render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{"empty": []string{"x"}})
	if got != "" {
		t.Fatalf("want empty output for a non-empty list, got %q", got)
	}
}

func TestDelimiterSwitchScenario(t *testing.T) {
	tmpl := compile(t, "t", "{{=<% %>=}}\n<%x%>")
	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{"x": 1})
	if got != "1" {
		t.Fatalf("want %q, got %q", "1", got)
	}
}

func TestArityErrorPropagates(t *testing.T) {
	tmpl := compile(t, "t", "{{name}}")
	ctx := map[string]interface{}{
		"name": func(a, b int) string { return "nope" },
	}
	r := NewRenderer([]*stache.Template{tmpl})
	_, err := r.Render("t", ctx)
	if err == nil {
		t.Fatal("expected an arity error for a callable requiring arguments")
	}
}

func TestTextOnlyRoundTrips(t *testing.T) {
	tmpl := compile(t, "t", "plain text, no tags at all\n")
	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{})
	if got != "plain text, no tags at all\n" {
		t.Fatalf("want verbatim round-trip, got %q", got)
	}
}

func TestTripleAndAmpersandUnescapedMatch(t *testing.T) {
	triple := compile(t, "t1", "{{{x}}}")
	amp := compile(t, "t2", "{{&x}}")
	ctx := map[string]interface{}{"x": "<b>"}

	got1 := render(t, []*stache.Template{triple}, "t1", ctx)
	got2 := render(t, []*stache.Template{amp}, "t2", ctx)
	if got1 != got2 || got1 != "<b>" {
		t.Fatalf("want both unescaped forms to match and be raw, got %q and %q", got1, got2)
	}
}

func TestLookupShadowing(t *testing.T) {
	tmpl := compile(t, "t", "{{#inner}}{{k}}{{/inner}}{{k}}")
	got := render(t, []*stache.Template{tmpl}, "t", map[string]interface{}{
		"k":     "outer",
		"inner": map[string]interface{}{"k": "shadowed"},
	})
	if got != "shadowedouter" {
		t.Fatalf("want inner binding to shadow and outer restored after, got %q", got)
	}
}

func TestPartialIndentationAppliedToEveryLine(t *testing.T) {
	included := compile(t, "included", "a\nb\n")
	main := compile(t, "main", "  {{>included}}\n")
	got := render(t, []*stache.Template{included, main}, "main", map[string]interface{}{})
	if got != "  a\n  b\n" {
		t.Fatalf("want every line of the partial indented, got %q", got)
	}
}
