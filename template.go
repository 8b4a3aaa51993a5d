package stache

// Template is one compiled Mustache source: its name (used for both
// diagnostics and partial resolution) and the parsed node list the
// emitter walks to produce C code.
type Template struct {
	Name  string
	Nodes []Node
}

// CompileSource runs the full front end — tag scanning, standalone
// whitespace stripping, and parsing — over a single template's source,
// without requiring a filesystem tree. It's the entry point driver code
// outside this package (refhost's conformance tests, in particular) uses
// to build a *Template set directly from in-memory fixtures.
func CompileSource(name, src string) (*Template, error) {
	return compileSource(name, src)
}

// compileSource is CompileSource's unexported core, used by the driver
// (compile.go) and by this package's own tests.
func compileSource(name, src string) (*Template, error) {
	tags, err := scanTags(name, src)
	if err != nil {
		return nil, err
	}
	tokens := buildTokens(src, tags)
	nodes, err := Parse(name, tokens)
	if err != nil {
		return nil, err
	}
	return &Template{Name: name, Nodes: nodes}, nil
}
