package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LaudateCorpus1/fastr/rprof"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start profiling a demo workload in the foreground until signaled",
	Long: `Starts the sampling profiler against a synthetic demo call chain and
drives it in a loop until interrupted (Ctrl+C) or until another rprofctl
stop process sends it SIGTERM. The pidfile lets a separate 'stop'
invocation find this process.`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, err := time.ParseDuration(intervalFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --interval %q: %v\n", intervalFlag, err)
			os.Exit(1)
		}

		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing pidfile %q: %v\n", pidFile, err)
			os.Exit(1)
		}
		defer os.Remove(pidFile)

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

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		stop := make(chan struct{})
		chain := buildDemoChain()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				default:
					runDemoWorkload(prof, chain, 1, interval/4)
				}
			}
		}()

		<-sig
		close(stop)
		<-done
		if err := prof.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stopping profiler: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("profile written to %s\n", outFile)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
