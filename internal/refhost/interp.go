package refhost

import (
	"fmt"
	"strings"

	"github.com/dgraham/stache"
)

// indentWriter is the Go stand-in for writer_t plus the compiler's
// writer_push_indent/writer_pop_indent extension: every byte written
// immediately after a newline (or at the very start of output) is
// preceded by the concatenation of the currently pushed indents, so a
// partial invoked from an indented standalone tag has its indentation
// applied to every line it produces, including lines from partials it
// in turn includes.
type indentWriter struct {
	b       strings.Builder
	indents []string
	atStart bool
}

func newIndentWriter() *indentWriter {
	return &indentWriter{atStart: true}
}

func (w *indentWriter) pushIndent(s string) {
	if s != "" {
		w.indents = append(w.indents, s)
	} else {
		w.indents = append(w.indents, "")
	}
}

func (w *indentWriter) popIndent() {
	w.indents = w.indents[:len(w.indents)-1]
}

func (w *indentWriter) write(s string) {
	for _, r := range s {
		if w.atStart {
			for _, ind := range w.indents {
				w.b.WriteString(ind)
			}
			w.atStart = false
		}
		w.b.WriteRune(r)
		if r == '\n' {
			w.atStart = true
		}
	}
}

// Renderer evaluates a compiled template set's AST against refhost
// values, standing in for the emitted C plus runtime shim in this
// repository's own conformance tests.
type Renderer struct {
	Templates map[string]*stache.Template
}

// NewRenderer indexes templates by logical name for partial dispatch.
func NewRenderer(templates []*stache.Template) *Renderer {
	m := make(map[string]*stache.Template, len(templates))
	for _, t := range templates {
		m[t.Name] = t
	}
	return &Renderer{Templates: m}
}

// Render renders the named template against ctx (the single top-of-stack
// frame) and returns its output, or an error if a resolved callable
// required arguments (the Go analogue of arity_error).
func (r *Renderer) Render(name string, ctx interface{}) (string, error) {
	t, ok := r.Templates[name]
	if !ok {
		return "", fmt.Errorf("refhost: no such template %q", name)
	}
	w := newIndentWriter()
	if err := r.renderNodes(w, t.Nodes, []interface{}{ctx}); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

func (r *Renderer) renderNodes(w *indentWriter, nodes []stache.Node, stack []interface{}) error {
	for _, n := range nodes {
		if err := r.renderNode(w, n, stack); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(w *indentWriter, n stache.Node, stack []interface{}) error {
	switch node := n.(type) {
	case *stache.TextNode:
		w.write(node.Text)
		return nil

	case *stache.InterpolationNode:
		v, err := r.resolve(node.Key, stack)
		if err != nil {
			return err
		}
		s := String(v)
		if !node.Raw {
			s = EscapeHTML(s)
		}
		w.write(s)
		return nil

	case *stache.SectionNode:
		return r.renderSection(w, node, stack)

	case *stache.PartialNode:
		sub, ok := r.Templates[node.Name]
		if !ok {
			return nil // unresolved partials render as nothing
		}
		w.pushIndent(node.Indent)
		err := r.renderNodes(w, sub.Nodes, stack)
		w.popIndent()
		return err

	default:
		return nil
	}
}

// renderSection implements the dispatch-by-shape rules: an inverted
// section renders its body once, unmodified, exactly when the value is
// falsy; a regular section skips a falsy value, iterates a list pushing
// each element, and otherwise pushes the value itself once.
func (r *Renderer) renderSection(w *indentWriter, n *stache.SectionNode, stack []interface{}) error {
	v, err := r.resolve(n.Key, stack)
	if err != nil {
		return err
	}

	if n.Inverted {
		if !Truthy(v) {
			return r.renderNodes(w, n.Body, stack)
		}
		return nil
	}

	if !Truthy(v) {
		return nil
	}

	if ValueKind(v) == KindList {
		length := Length(v)
		for i := 0; i < length; i++ {
			elem := IterNext(v, i)
			if err := r.renderNodes(w, n.Body, append(stack, elem)); err != nil {
				return err
			}
		}
		return nil
	}

	return r.renderNodes(w, n.Body, append(stack, v))
}

// resolve walks key against stack top-down, then invokes the bound value
// if the runtime reports it callable with zero required arguments.
func (r *Renderer) resolve(key stache.Key, stack []interface{}) (interface{}, error) {
	if key.Implicit {
		return stack[len(stack)-1], nil
	}

	var v interface{}
	var present bool
	for i := len(stack) - 1; i >= 0; i-- {
		v, present = Lookup(stack[i], key.Segments[0])
		if present {
			break
		}
	}
	if !present {
		v = nil
	}
	for _, seg := range key.Segments[1:] {
		v, _ = Lookup(v, seg)
	}

	if ValueKind(v) == KindCallable {
		result, err := Call0(v)
		if err != nil {
			return nil, err
		}
		v = result
	}
	return v, nil
}
