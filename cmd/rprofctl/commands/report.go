package commands

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var quotedName = regexp.MustCompile(`"[^"]*"`)

// hotThreshold is the fraction of samples a function must appear in
// before report.go highlights it as hot, in the absence of a
// statistically principled cutoff - this is a demo CLI, not the
// profiler core itself.
const hotThreshold = 0.5

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Pretty-print a previously captured profile file to the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %q: %v\n", outFile, err)
			os.Exit(1)
		}
		printReport(string(raw))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// printReport renders a profile report with the header and #File table
// highlighted, and sample lines' function names colored by how often
// they appear across the file - a cheap stand-in for a real flame-graph
// view.
func printReport(text string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	counts := make(map[string]int)
	sampleLines := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "#File") || strings.HasPrefix(line, "sample.interval") ||
			strings.HasPrefix(line, "memory profiling") || strings.HasPrefix(line, "line profiling") {
			continue
		}
		sampleLines++
		for _, m := range quotedName.FindAllString(line, -1) {
			counts[m]++
		}
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "#File"):
			fmt.Println(color.YellowString(line))
		case strings.HasPrefix(line, "sample.interval"),
			strings.HasPrefix(line, "memory profiling"),
			strings.HasPrefix(line, "line profiling"):
			fmt.Println(color.CyanString(line))
		default:
			fmt.Println(colorSampleLine(line, counts, sampleLines))
		}
	}
}

func colorSampleLine(line string, counts map[string]int, sampleLines int) string {
	if sampleLines == 0 {
		return line
	}
	return quotedName.ReplaceAllStringFunc(line, func(name string) string {
		frac := float64(counts[name]) / float64(sampleLines)
		if frac >= hotThreshold {
			return color.New(color.FgRed, color.Bold).Sprint(name)
		}
		return name
	})
}
