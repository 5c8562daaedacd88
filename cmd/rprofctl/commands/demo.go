package commands

import (
	"math/rand"
	"time"

	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rprof"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// demoNode is a synthetic syntax node standing in for the out-of-scope
// parser: it carries a source position and, when it marks the root of a
// function body, implements rprof.FunctionRoot so WriteReport can render
// it.
type demoNode struct {
	path     string
	line     int
	fn       bool
	funcName string
}

func (n demoNode) SourceSection() (string, int) { return n.path, n.line }
func (n demoNode) IsUserFunctionRoot() bool     { return n.fn }
func (n demoNode) FunctionName() string         { return n.funcName }

var (
	_ rast.SyntaxNode    = demoNode{}
	_ rprof.FunctionRoot = demoNode{}
)

// demoActivation is one level of the synthetic call chain driven by
// start/run: a function body plus the frame holding its local "x".
type demoActivation struct {
	caller *rcaller.RCaller
	frame  *rframe.Frame
	body   demoNode
}

// buildDemoChain constructs a small recursive-looking call chain
// (readConfig -> parseLine -> tokenize, three levels deep) so the
// profiler has a non-trivial stack to sample. It mirrors the shape a
// real interpreter would hand rprof: nested activations, each owning a
// Frame with at least one local.
func buildDemoChain() []demoActivation {
	g := rcaller.Global()
	names := []struct {
		file string
		fn   string
	}{
		{"readconfig.r", "readConfig"},
		{"parseline.r", "parseLine"},
		{"tokenize.r", "tokenize"},
	}

	chain := make([]demoActivation, 0, len(names))
	prev := g
	for i, nm := range names {
		depth := i + 1
		body := demoNode{path: nm.file, line: 10 + i, fn: true, funcName: nm.fn}
		act := rcaller.New(depth, prev, prev, body, rcaller.Regular, nil, true)

		fd := rframe.NewFrameDescriptor(rframe.FDID(depth))
		fd.AddSlot("x", rframe.KindObject, false)
		frame := rframe.NewFrame(fd, act)

		chain = append(chain, demoActivation{caller: act, frame: frame, body: body})
		prev = act
	}
	return chain
}

// runDemoWorkload drives iterations statement-hook calls against the
// innermost activation of chain, writing a fresh local value (and
// reporting it to prof as an allocation) on each pass, so a memory
// profile has something to account. It is the synthetic stand-in for
// "the AST executor calling StatementHook at each statement boundary"
// (spec.md §4.6). pace, when nonzero, is slept between iterations so
// the profiler's timer goroutine actually gets a chance to set its tick
// flag between hooks.
func runDemoWorkload(prof *rprof.Profiler, chain []demoActivation, iterations int, pace time.Duration) {
	inner := chain[len(chain)-1]
	for i := 0; i < iterations; i++ {
		v := rvalue.NewDouble(rand.Float64())
		prof.ReportAllocation(v)
		_ = inner.frame.Write(0, v, rframe.WriteLocal)

		line := demoNode{path: inner.body.path, line: inner.body.line + i, fn: true, funcName: inner.body.funcName}
		prof.StatementHook(line, inner.caller)

		if pace > 0 {
			time.Sleep(pace)
		}
	}
}
