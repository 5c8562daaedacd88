package commands

import (
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Signal a running 'rprofctl start' session to stop and write its report",
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(pidFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading pidfile %q: %v\n", pidFile, err)
			os.Exit(1)
		}
		pid, err := strconv.Atoi(string(raw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "pidfile %q does not contain a pid: %v\n", pidFile, err)
			os.Exit(1)
		}
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
			fmt.Fprintf(os.Stderr, "signaling pid %d: %v\n", pid, err)
			os.Exit(1)
		}
		fmt.Printf("sent stop signal to pid %d\n", pid)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
