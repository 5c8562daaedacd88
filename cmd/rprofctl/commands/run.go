package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/LaudateCorpus1/fastr/rprof"
	"github.com/spf13/cobra"
)

var runIterations int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start, drive, and stop the demo profiling session in one shot, then print the report",
	Long: `run is the self-contained demo: it starts the sampling profiler
against a synthetic three-level call chain, drives it for --iterations
statement boundaries, stops it, and prints the resulting report - all in
a single process, no pidfile or signals required.`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, err := time.ParseDuration(intervalFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --interval %q: %v\n", intervalFlag, err)
			os.Exit(1)
		}

		prof := rprof.NewProfiler(nil)
		opts := rprof.StartOptions{
			Filename: outFile,
			Interval: interval,
			Mem:      memFlag,
			Line:     lineFlag,
			GC:       gcFlag,
			Append:   appendFlag,
		}
		if err := prof.Start(opts, openProfileFile); err != nil {
			fmt.Fprintf(os.Stderr, "starting profiler: %v\n", err)
			os.Exit(1)
		}

		chain := buildDemoChain()
		runDemoWorkload(prof, chain, runIterations, interval/4)

		if err := prof.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stopping profiler: %v\n", err)
			os.Exit(1)
		}

		raw, err := os.ReadFile(outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %q: %v\n", outFile, err)
			os.Exit(1)
		}
		printReport(string(raw))
	},
}

func init() {
	runCmd.Flags().IntVar(&runIterations, "iterations", 200, "number of statement-boundary ticks to drive through the demo workload")
	rootCmd.AddCommand(runCmd)
}
