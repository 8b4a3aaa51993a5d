// Command stache compiles a directory of Mustache templates into a
// single C translation unit.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dgraham/stache"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("stache", flag.ContinueOnError)
	dir := fs.String("d", "", "template root directory (required)")
	out := fs.String("o", "", "output C file path (required)")
	binding := fs.String("emit", "ruby", "host binding glue to emit")
	strict := fs.Bool("strict", false, "fail compilation on an unresolved partial reference")
	debug := fs.Bool("debug", false, "enable trace-level logging")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dir == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "stache: -d and -o are required")
		fs.Usage()
		return 2
	}

	stache.SetDebug(*debug)

	opts := stache.Options{Binding: *binding, Strict: *strict}
	if err := stache.Compile(*dir, *out, opts); err != nil {
		stache.ReportDiagnostics(os.Stderr, err)
		return 1
	}
	return 0
}
