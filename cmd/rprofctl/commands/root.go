package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rprofctl",
	Short: "rprofctl drives the sampling profiler core against a demo workload",
	Long: `rprofctl exercises the environment core's sampling profiler (rprof)
end to end: start/stop it around a synthetic call chain, or run the whole
demo in one shot and print the resulting profile.`,
}

// Execute adds all child commands to the root command and runs it. Called
// by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Global flags shared by start/stop/report/run.
var (
	outFile      string
	pidFile      string
	intervalFlag string
	memFlag      bool
	lineFlag     bool
	gcFlag       bool
	appendFlag   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outFile, "out", "o", "rprofctl.out", "profile output file")
	rootCmd.PersistentFlags().StringVar(&pidFile, "pidfile", defaultPIDFile(), "pidfile used by start/stop to coordinate a background session")
	rootCmd.PersistentFlags().StringVar(&intervalFlag, "interval", "10ms", "sampling interval")
	rootCmd.PersistentFlags().BoolVar(&memFlag, "mem", false, "enable memory profiling")
	rootCmd.PersistentFlags().BoolVar(&lineFlag, "line", false, "enable line profiling")
	rootCmd.PersistentFlags().BoolVar(&gcFlag, "gc", false, "set the profiler's GC start option (sampling and the report do not depend on it)")
	rootCmd.PersistentFlags().BoolVar(&appendFlag, "append", false, "append to an existing profile output file instead of truncating it")
}

func defaultPIDFile() string {
	return os.TempDir() + "/rprofctl.pid"
}
