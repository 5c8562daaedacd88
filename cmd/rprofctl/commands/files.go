package commands

import (
	"os"

	"github.com/LaudateCorpus1/fastr/rprof"
)

// openProfileFile is the rprof.Profiler.Start "open" callback: it maps
// StartOptions.{Filename,Append} onto an *os.File, which satisfies
// rprof.WriteCloser.
func openProfileFile(opts rprof.StartOptions) (rprof.WriteCloser, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opts.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(opts.Filename, flags, 0o644)
}
