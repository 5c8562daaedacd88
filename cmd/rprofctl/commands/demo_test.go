package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/LaudateCorpus1/fastr/rprof"
	"github.com/stretchr/testify/require"
)

func TestBuildDemoChainThreeLevelsDeep(t *testing.T) {
	chain := buildDemoChain()
	require.Len(t, chain, 3)
	require.Equal(t, "readConfig", chain[0].body.funcName)
	require.Equal(t, "tokenize", chain[2].body.funcName)
	require.Equal(t, 1, chain[0].caller.Depth)
	require.Equal(t, 3, chain[2].caller.Depth)
}

// memBuffer adapts a bytes.Buffer to rprof.WriteCloser, mirroring
// rprof's own test helper, so this package can drive a real Profiler
// without touching the filesystem.
type memBuffer struct {
	bytes.Buffer
}

func (m *memBuffer) Close() error { return nil }

func TestRunDemoWorkloadProducesSamples(t *testing.T) {
	prof := rprof.NewProfiler(nil)
	buf := &memBuffer{}
	require.NoError(t, prof.Start(rprof.StartOptions{
		Filename: "demo.out",
		Interval: time.Microsecond,
	}, func(opts rprof.StartOptions) (rprof.WriteCloser, error) {
		return buf, nil
	}))

	chain := buildDemoChain()
	runDemoWorkload(prof, chain, 50, 10*time.Microsecond)

	require.NoError(t, prof.Stop())
	require.Contains(t, buf.String(), `"tokenize"`)
}
