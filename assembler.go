package stache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
)

// Assemble concatenates, in order, a fixed preamble (includes, among them
// the runtime header), forward declarations of every template function,
// the interned string table, every emitted function, the dispatch table,
// and the binding glue named by opts.Binding, into a single
// self-contained C source.
//
// Templates are emitted in lexicographic order by logical name so
// compilation may parallelize across templates while the output stays
// deterministic. Partial references are validated against the full
// template set before any function is emitted: an unresolved name fails
// the whole run in strict mode, or is logged as a warning and its call
// site omitted from the output otherwise.
func Assemble(templates []*Template, opts Options) ([]byte, error) {
	sorted := make([]*Template, len(templates))
	copy(sorted, templates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	known := make(map[string]bool, len(sorted))
	for _, t := range sorted {
		known[t.Name] = true
	}

	if err := validatePartials(sorted, known, opts.Strict); err != nil {
		return nil, err
	}

	strTab := newStringTable()
	em := &emitter{strings: strTab, known: known, strict: opts.Strict}

	var functions bytes.Buffer
	names := make([]string, 0, len(sorted))
	for _, t := range sorted {
		names = append(names, em.emitTemplate(&functions, t))
	}

	var out bytes.Buffer
	writePreamble(&out)
	writeForwardDecls(&out, names)
	writeStringTable(&out, strTab)
	out.Write(functions.Bytes())
	writeDispatchTable(&out, sorted, names)
	if err := writeBindingGlue(&out, opts.Binding); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// validatePartials walks every template's AST collecting Partial
// references and checking each against known. In strict mode an
// unresolved reference is a fatal *MultiError; otherwise it is logged at
// warning level and left for the emitter to omit.
func validatePartials(templates []*Template, known map[string]bool, strict bool) error {
	var errs []*Error
	for _, t := range templates {
		walkPartials(t.Nodes, func(p *PartialNode) {
			if known[p.Name] {
				return
			}
			if strict {
				errs = append(errs, &Error{
					Template: t.Name,
					Kind:     ErrUnresolvedPartial,
					Message:  fmt.Sprintf("partial %q does not match any compiled template", p.Name),
				})
				return
			}
			logger.Warningf("template %q references unresolved partial %q; rendering it will be a no-op", t.Name, p.Name)
		})
	}
	if len(errs) > 0 {
		return &MultiError{Errors: errs}
	}
	return nil
}

// walkPartials visits every PartialNode reachable from nodes, descending
// into section bodies.
func walkPartials(nodes []Node, fn func(*PartialNode)) {
	for _, n := range nodes {
		switch node := n.(type) {
		case *PartialNode:
			fn(node)
		case *SectionNode:
			walkPartials(node.Body, fn)
		}
	}
}

// writePreamble emits the includes every generated translation unit
// depends on. The runtime ABI itself is declared by stache_runtime.h;
// calls to templates defined later in the file are made legal by
// writeForwardDecls, not by anything emitted here.
func writePreamble(out *bytes.Buffer) {
	out.WriteString("/* Generated by stache. Do not edit by hand. */\n")
	out.WriteString("#include <stdint.h>\n")
	out.WriteString("#include <stddef.h>\n")
	out.WriteString("#include \"stache_runtime.h\"\n\n")
}

// writeForwardDecls declares every template function ahead of its
// definition. Functions are defined in lexicographic order, so a partial
// call to a template sorting later than its caller would otherwise
// reference an undeclared function.
func writeForwardDecls(out *bytes.Buffer, names []string) {
	for _, name := range names {
		fmt.Fprintf(out, "void %s(writer_t*, value_t);\n", name)
	}
	if len(names) > 0 {
		out.WriteString("\n")
	}
}

// writeStringTable emits the single interned-literal buffer referenced
// by offset/length throughout the emitted functions.
func writeStringTable(out *bytes.Buffer, t *stringTable) {
	size := len(t.data)
	if size == 0 {
		size = 1 // a zero-length array is not portable C; no call site references this placeholder byte.
	}
	fmt.Fprintf(out, "static const unsigned char STACHE_STRINGS[%d] = {", size)
	for i, b := range t.data {
		if i%20 == 0 {
			out.WriteString("\n  ")
		}
		fmt.Fprintf(out, "%d,", b)
	}
	if len(t.data) == 0 {
		out.WriteString("\n  0,")
	}
	out.WriteString("\n};\n\n")
}

// writeDispatchTable emits the name -> function-pointer table the host
// binding walks to register every compiled template.
func writeDispatchTable(out *bytes.Buffer, templates []*Template, names []string) {
	size := len(templates)
	if size == 0 {
		size = 1
	}
	fmt.Fprintf(out, "typedef struct { const char *name; void (*fn)(writer_t*, value_t); } stache_entry_t;\n\n")
	fmt.Fprintf(out, "static const stache_entry_t STACHE_DISPATCH[%d] = {\n", size)
	for i, t := range templates {
		fmt.Fprintf(out, "  { %q, %s },\n", t.Name, names[i])
	}
	if len(templates) == 0 {
		out.WriteString("  { 0, 0 },\n")
	}
	out.WriteString("};\n\n")
	fmt.Fprintf(out, "static const size_t STACHE_DISPATCH_LEN = %d;\n\n", len(templates))
}

// writeBindingGlue appends the trailing host-language registration code
// for the selected binding. Only "ruby" is implemented; other binding
// names are reserved for future host bindings.
func writeBindingGlue(out *bytes.Buffer, binding string) error {
	switch binding {
	case "", "ruby":
		out.WriteString("#ifdef STACHE_RUBY_BINDING\n")
		out.WriteString("void stache_ruby_register(void *mod) {\n")
		out.WriteString("  size_t i;\n")
		out.WriteString("  for (i = 0; i < STACHE_DISPATCH_LEN; i++) {\n")
		out.WriteString("    stache_ruby_define_template(mod, STACHE_DISPATCH[i].name, STACHE_DISPATCH[i].fn);\n")
		out.WriteString("  }\n")
		out.WriteString("}\n")
		out.WriteString("#endif\n")
		return nil
	default:
		return errors.Errorf("unsupported binding %q", binding)
	}
}

// AtomicWriteFile writes data to path by creating a temporary file in the
// same directory and renaming it into place, so a failed write never
// leaves a partial output file behind.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stache-*.c.tmp")
	if err != nil {
		return errors.Annotate(err, "creating temporary output file")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Annotate(err, "writing temporary output file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Annotate(err, "closing temporary output file")
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Annotate(err, "renaming temporary output file into place")
	}
	return nil
}
