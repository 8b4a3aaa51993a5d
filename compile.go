package stache

import (
	"time"

	"github.com/juju/errors"
)

// Compile discovers every *.mustache file under dir, compiles each to a
// Template, assembles the results into a single C translation unit per
// opts, and atomically writes it to out.
//
// Every discovered template is compiled even after earlier failures: the
// driver never stops at the first error. If any template fails, the
// batched diagnostics are returned as a *MultiError and no output file is
// written.
func Compile(dir, out string, opts Options) error {
	files, err := DiscoverTemplates(dir)
	if err != nil {
		return errors.Annotate(err, "discovering templates")
	}

	var templates []*Template
	var errs []*Error
	for _, f := range files {
		start := time.Now()
		t, err := compileSource(f.Name, f.Source)
		if err != nil {
			errs = append(errs, err.(*Error))
			continue
		}
		logger.Tracef("compiled %s in %s", f.Name, time.Since(start))
		templates = append(templates, t)
	}

	if len(errs) > 0 {
		return &MultiError{Errors: errs}
	}

	data, err := Assemble(templates, opts)
	if err != nil {
		return err
	}

	if err := AtomicWriteFile(out, data); err != nil {
		return errors.Annotate(err, "writing output")
	}
	return nil
}
