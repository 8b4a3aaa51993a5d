package stache

import (
	"fmt"
	"io"
	"strings"
)

// mangle converts a template's logical name into a legal C identifier
// fragment: every character (rune) outside [A-Za-z0-9_] becomes a single
// '_'.
func mangle(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// funcName is the mangled C function name for a template's logical name.
func funcName(name string) string {
	return "tmpl_" + mangle(name)
}

// stringTable collects every literal byte run emitted across all
// templates into one deduplicated, concatenated buffer, referenced at
// each call site by (offset, length).
type stringTable struct {
	data    []byte
	offsets map[string]int
}

func newStringTable() *stringTable {
	return &stringTable{offsets: make(map[string]int)}
}

// intern returns the (offset, length) of s within the shared table,
// appending it only the first time a given byte sequence is seen.
func (t *stringTable) intern(s string) (int, int) {
	if off, ok := t.offsets[s]; ok {
		return off, len(s)
	}
	off := len(t.data)
	t.data = append(t.data, s...)
	t.offsets[s] = off
	return off, len(s)
}

// emitter walks one Template's AST into a C function body, threading a
// compile-time context-frame stack that mirrors the runtime locals the
// emitted code will create.
type emitter struct {
	strings *stringTable
	known   map[string]bool // logical names of every template in this run
	strict  bool
	tmp     int // fresh-variable counter, reset per function
}

// funcCtx is the compile-time analogue of the runtime context stack: the
// C local variable names currently holding frames, topmost last.
type funcCtx struct {
	frames []string
}

func (f *funcCtx) top() string { return f.frames[len(f.frames)-1] }

func (f *funcCtx) push(name string) *funcCtx {
	next := make([]string, len(f.frames)+1)
	copy(next, f.frames)
	next[len(f.frames)] = name
	return &funcCtx{frames: next}
}

// fresh returns a new unique local variable name, scoped to the function
// currently being emitted.
func (e *emitter) fresh(prefix string) string {
	e.tmp++
	return fmt.Sprintf("%s%d", prefix, e.tmp)
}

// litArgs interns s and returns the C pointer expression and length to
// pass as the (const char*, size_t) pair expected by writer_write and by
// lookup's key argument.
func (e *emitter) litArgs(s string) (string, int) {
	off, ln := e.strings.intern(s)
	return fmt.Sprintf("(const char *)STACHE_STRINGS + %d", off), ln
}

// emitTemplate lowers one compiled Template into its C function
// definition, written to w, and returns the function's mangled name for
// the dispatch table.
func (e *emitter) emitTemplate(w io.Writer, t *Template) string {
	e.tmp = 0
	name := funcName(t.Name)
	fmt.Fprintf(w, "void %s(writer_t *w, value_t ctx) {\n", name)
	root := &funcCtx{frames: []string{"ctx"}}
	for _, n := range t.Nodes {
		e.emitNode(w, n, root)
	}
	fmt.Fprint(w, "}\n\n")
	return name
}

func (e *emitter) emitNode(w io.Writer, n Node, fctx *funcCtx) {
	switch node := n.(type) {
	case *TextNode:
		e.emitText(w, node)
	case *InterpolationNode:
		e.emitInterpolation(w, node, fctx)
	case *SectionNode:
		e.emitSection(w, node, fctx)
	case *PartialNode:
		e.emitPartial(w, node, fctx)
	}
}

func (e *emitter) emitText(w io.Writer, n *TextNode) {
	if n.Text == "" {
		return
	}
	ptr, ln := e.litArgs(n.Text)
	fmt.Fprintf(w, "  writer_write(w, %s, %d);\n", ptr, ln)
}

// resolveValue resolves key against fctx into a fresh value_t local and,
// unless key is the implicit iterator, invokes it if the runtime reports
// it callable with zero required arguments.
func (e *emitter) resolveValue(w io.Writer, key Key, fctx *funcCtx) string {
	v := e.emitLookup(w, key, fctx)
	if key.Implicit {
		return v
	}
	e.invokeIfCallable(w, v)
	return v
}

// emitLookup writes the statements that walk key against fctx's
// compile-time frame stack: the head segment binds against the first
// frame (top-down) reporting the key present; remaining segments resolve
// strictly inside that value.
func (e *emitter) emitLookup(w io.Writer, key Key, fctx *funcCtx) string {
	if key.Implicit {
		return fctx.top()
	}

	v := e.fresh("v")
	p := e.fresh("p")
	head := key.Segments[0]
	ptr, ln := e.litArgs(head)

	fmt.Fprintf(w, "  value_t %s; int %s = 0;\n", v, p)
	for i := len(fctx.frames) - 1; i >= 0; i-- {
		frame := fctx.frames[i]
		if i == len(fctx.frames)-1 {
			fmt.Fprintf(w, "  %s = lookup(%s, %s, %d, &%s);\n", v, frame, ptr, ln, p)
		} else {
			fmt.Fprintf(w, "  if (!%s) { %s = lookup(%s, %s, %d, &%s); }\n", p, v, frame, ptr, ln, p)
		}
	}
	for _, seg := range key.Segments[1:] {
		sptr, sln := e.litArgs(seg)
		fmt.Fprintf(w, "  %s = lookup(%s, %s, %d, &%s);\n", v, v, sptr, sln, p)
	}
	return v
}

// invokeIfCallable replaces v with the result of call0(v) when the
// runtime reports v callable, trusting the host binding's call0 to have
// performed a non-local exit on arity_err before returning to this
// function; we still guard the return as a defensive backstop.
func (e *emitter) invokeIfCallable(w io.Writer, v string) {
	errName := e.fresh("err")
	fmt.Fprintf(w, "  if (kind(%s) == CALLABLE) {\n", v)
	fmt.Fprintf(w, "    int %s = 0;\n", errName)
	fmt.Fprintf(w, "    %s = call0(%s, &%s);\n", v, v, errName)
	fmt.Fprintf(w, "    if (%s) { return; }\n", errName)
	fmt.Fprint(w, "  }\n")
}

func (e *emitter) emitInterpolation(w io.Writer, n *InterpolationNode, fctx *funcCtx) {
	v := e.resolveValue(w, n.Key, fctx)
	if n.Raw {
		fmt.Fprintf(w, "  writer_emit_raw(w, %s);\n", v)
	} else {
		fmt.Fprintf(w, "  writer_emit_escaped(w, %s);\n", v)
	}
}

// emitSection lowers a section or inverted section. truthiness() already
// encodes the falsy set (nil, false, empty
// string, empty list), so both the skip test and the inverted duality
// test reduce to a single runtime call; list iteration is the only place
// a non-inverted section needs to distinguish shape.
func (e *emitter) emitSection(w io.Writer, n *SectionNode, fctx *funcCtx) {
	fmt.Fprint(w, "  {\n")
	v := e.resolveValue(w, n.Key, fctx)

	if n.Inverted {
		fmt.Fprintf(w, "  if (!truthiness(%s)) {\n", v)
		for _, child := range n.Body {
			e.emitNode(w, child, fctx)
		}
		fmt.Fprint(w, "  }\n")
		fmt.Fprint(w, "  }\n")
		return
	}

	fmt.Fprintf(w, "  if (truthiness(%s)) {\n", v)
	fmt.Fprintf(w, "    if (kind(%s) == LIST) {\n", v)
	lenVar := e.fresh("len")
	idxVar := e.fresh("i")
	doneVar := e.fresh("done")
	elemVar := e.fresh("ctx")
	fmt.Fprintf(w, "      size_t %s = length(%s);\n", lenVar, v)
	fmt.Fprintf(w, "      for (size_t %s = 0; %s < %s; %s++) {\n", idxVar, idxVar, lenVar, idxVar)
	fmt.Fprintf(w, "        int %s = 0;\n", doneVar)
	fmt.Fprintf(w, "        value_t %s = iter_next(%s, %s, &%s);\n", elemVar, v, idxVar, doneVar)
	listCtx := fctx.push(elemVar)
	for _, child := range n.Body {
		e.emitNode(w, child, listCtx)
	}
	fmt.Fprint(w, "      }\n")
	fmt.Fprint(w, "    } else {\n")
	scalarVar := e.fresh("ctx")
	fmt.Fprintf(w, "      value_t %s = %s;\n", scalarVar, v)
	scalarCtx := fctx.push(scalarVar)
	for _, child := range n.Body {
		e.emitNode(w, child, scalarCtx)
	}
	fmt.Fprint(w, "    }\n")
	fmt.Fprint(w, "  }\n")
	fmt.Fprint(w, "  }\n")
}

// emitPartial calls another template's dispatch function with the
// current top frame. An unresolved partial name is only ever reached
// here in non-strict mode (Assemble fails compilation before emission in
// strict mode); a missing partial renders as nothing, so the call site is
// simply omitted.
func (e *emitter) emitPartial(w io.Writer, n *PartialNode, fctx *funcCtx) {
	if !e.known[n.Name] {
		return
	}
	callee := funcName(n.Name)
	if n.Indent == "" {
		fmt.Fprintf(w, "  %s(w, %s);\n", callee, fctx.top())
		return
	}
	ptr, ln := e.litArgs(n.Indent)
	fmt.Fprintf(w, "  writer_push_indent(w, %s, %d);\n", ptr, ln)
	fmt.Fprintf(w, "  %s(w, %s);\n", callee, fctx.top())
	fmt.Fprint(w, "  writer_pop_indent(w);\n")
}
