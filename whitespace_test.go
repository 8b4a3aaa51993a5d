package stache

import "testing"

func tokensText(t *testing.T, tokens []*Token) []string {
	t.Helper()
	var out []string
	for _, tok := range tokens {
		if tok.Kind == TokenText {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestBuildTokensStripsStandaloneSection(t *testing.T) {
	src := "before\n{{#a}}\ninside\n{{/a}}\nafter"
	tags, err := scanTags("t", src)
	if err != nil {
		t.Fatalf("scanTags: %v", err)
	}
	tokens := buildTokens(src, tags)
	text := tokensText(t, tokens)
	for _, s := range text {
		if s == "\n" {
			t.Fatalf("standalone section tags should strip their line entirely, got stray newline in %v", text)
		}
	}
	want := []string{"before\n", "inside\n", "after"}
	if len(text) != len(want) {
		t.Fatalf("want %v, got %v", want, text)
	}
	for i := range want {
		if text[i] != want[i] {
			t.Errorf("text[%d]: want %q, got %q", i, want[i], text[i])
		}
	}
}

func TestBuildTokensKeepsNonStandaloneVariable(t *testing.T) {
	src := "Hello {{name}}!\n"
	tags, _ := scanTags("t", src)
	tokens := buildTokens(src, tags)
	text := tokensText(t, tokens)
	if len(text) != 2 || text[0] != "Hello " || text[1] != "!\n" {
		t.Fatalf("unexpected text spans: %v", text)
	}
}

func TestBuildTokensCapturesPartialIndent(t *testing.T) {
	src := "  {{>included}}\n"
	tags, _ := scanTags("t", src)
	tokens := buildTokens(src, tags)
	var found bool
	for _, tok := range tokens {
		if tok.Kind == TokenPartial {
			found = true
			if !tok.Standalone {
				t.Fatal("expected the partial tag to be standalone")
			}
			if tok.Indent != "  " {
				t.Fatalf("want indent %q, got %q", "  ", tok.Indent)
			}
		}
	}
	if !found {
		t.Fatal("no partial token produced")
	}
}

func TestBuildTokensIdempotentUnderDoubleApplication(t *testing.T) {
	src := "{{#a}}\n  {{!c}}\n{{/a}}\n"
	tags, _ := scanTags("t", src)
	first := buildTokens(src, tags)
	second := buildTokens(src, tags)
	if len(first) != len(second) {
		t.Fatalf("running buildTokens twice on the same input produced different lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind != second[i].Kind || first[i].Text != second[i].Text {
			t.Fatalf("token %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildTokensCommentNotAloneIsNotStandalone(t *testing.T) {
	src := "x {{!c}} y\n"
	tags, _ := scanTags("t", src)
	tokens := buildTokens(src, tags)
	for _, tok := range tokens {
		if tok.Kind == TokenComment && tok.Standalone {
			t.Fatal("a comment sharing its line with other text must not be standalone")
		}
	}
}
