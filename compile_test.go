package stache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompileWritesOutput(t *testing.T) {
	root := t.TempDir()
	writeTemplateTree(t, root, map[string]string{
		"index.mustache": "Hello {{name}}!",
	})
	out := filepath.Join(t.TempDir(), "out.c")

	if err := Compile(root, out, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading compiled output: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestCompileBatchesErrorsAcrossTemplates(t *testing.T) {
	root := t.TempDir()
	writeTemplateTree(t, root, map[string]string{
		"good.mustache": "fine",
		"bad1.mustache": "{{#a}}unclosed",
		"bad2.mustache": "{{/unopened}}",
	})
	out := filepath.Join(t.TempDir(), "out.c")

	err := Compile(root, out, Options{})
	if err == nil {
		t.Fatal("expected a batched compilation error")
	}
	me, ok := err.(*MultiError)
	if !ok {
		t.Fatalf("want *MultiError, got %#v", err)
	}
	if len(me.Errors) != 2 {
		t.Fatalf("want both bad templates reported, got %d: %v", len(me.Errors), me.Errors)
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatal("no output file should be written when compilation fails")
	}
}

func TestCompileNoTemplatesProducesEmptyAssembly(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "out.c")
	if err := Compile(root, out, Options{}); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected an output file even for an empty template set: %v", err)
	}
}
