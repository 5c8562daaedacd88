package rprof

import (
	"fmt"
	"io"

	"github.com/LaudateCorpus1/fastr/rast"
)

// FunctionRoot is the adapter a syntax node implements so WriteReport
// can tell a user-function frame from one that should be skipped, per
// spec.md §6: "Non-function frames are skipped."
type FunctionRoot interface {
	rast.SyntaxNode
	IsUserFunctionRoot() bool
	FunctionName() string
}

// WriteReport implements spec.md §6's exact text format for the profile
// output file.
func WriteReport(w io.Writer, opts StartOptions, samples []sample) error {
	if opts.Mem {
		if _, err := io.WriteString(w, "memory profiling: "); err != nil {
			return err
		}
	}
	if opts.Line {
		if _, err := io.WriteString(w, "line profiling: "); err != nil {
			return err
		}
	}
	microseconds := opts.Interval.Microseconds()
	if _, err := fmt.Fprintf(w, "sample.interval=%d\n", microseconds); err != nil {
		return err
	}

	fileIndex := make(map[string]int)
	if opts.Line {
		next := 1
		for _, s := range samples {
			for _, node := range s.stack {
				path, _ := node.SourceSection()
				if path == "" {
					continue
				}
				if _, seen := fileIndex[path]; seen {
					continue
				}
				fileIndex[path] = next
				if _, err := fmt.Fprintf(w, "#File %d: %s\n", next, path); err != nil {
					return err
				}
				next++
			}
		}
	}

	for _, s := range samples {
		if err := writeSampleLine(w, opts, fileIndex, s); err != nil {
			return err
		}
	}
	return nil
}

func writeSampleLine(w io.Writer, opts StartOptions, fileIndex map[string]int, s sample) error {
	if opts.Mem {
		if _, err := fmt.Fprintf(w, ":%d:%d:%d:%d:", s.memory[0], s.memory[1], s.memory[2], s.memory[3]); err != nil {
			return err
		}
	}

	// stack was captured youngest-to-oldest; the report wants
	// outer-to-inner, so walk it in reverse. The file#line annotation,
	// when known, is attached only to the first (outermost) printed
	// frame and gives that frame's own source position, matching spec.md
	// §8 scenario 5's line grammar, which allows at most one such
	// marker per sample line.
	first := true
	for i := len(s.stack) - 1; i >= 0; i-- {
		fn, ok := s.stack[i].(FunctionRoot)
		if !ok || !fn.IsUserFunctionRoot() {
			continue
		}
		if first && opts.Line {
			path, line := fn.SourceSection()
			if idx, known := fileIndex[path]; known {
				if _, err := fmt.Fprintf(w, " %d#%d", idx, line); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintf(w, " %q", fn.FunctionName()); err != nil {
			return err
		}
		first = false
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}
