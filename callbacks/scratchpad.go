package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/worldbank-mcp/tools"
)

var TimeNowFn = time.Now

type runKey struct{}

// WithRunID returns a context that associates tool calls with the run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunID returns the run ID from the context, if any.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runKey{}).(string)
	return v
}

type RunStats struct {
	RunID string

	Duration            time.Duration
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
	InputBytes          uint64
	OutputBytes         uint64
}

// Scratchpad records a transcript and stats of tool calls per run.
// Calls on a context without a started run are ignored.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts recording for the run ID in ctx.
func (l *Scratchpad) StartRun(ctx context.Context) {
	runID := RunID(ctx)
	if runID == "" {
		return
	}

	r := &run{
		stats:   RunStats{RunID: runID},
		started: TimeNowFn(),
	}

	l.lock.Lock()
	l.runs[runID] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
}

// EndRun stops recording and returns the run stats and transcript.
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := RunStats{
		RunID:               run.stats.RunID,
		Duration:            TimeNowFn().Sub(run.started),
		ToolsCalls:          atomic.LoadUint32(&run.stats.ToolsCalls),
		ToolsCallsSucceeded: atomic.LoadUint32(&run.stats.ToolsCallsSucceeded),
		ToolsCallsFailed:    atomic.LoadUint32(&run.stats.ToolsCallsFailed),
		ToolNotFound:        atomic.LoadUint32(&run.stats.ToolNotFound),
		InputBytes:          atomic.LoadUint64(&run.stats.InputBytes),
		OutputBytes:         atomic.LoadUint64(&run.stats.OutputBytes),
	}

	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("Bytes In: %d, Bytes Out: %d",
		stats.InputBytes,
		stats.OutputBytes,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, stats.RunID)
	l.lock.Unlock()

	return &stats, run.bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	runID := RunID(ctx)
	if runID == "" {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[runID]
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	atomic.AddUint64(&run.stats.InputBytes, uint64(len(input)))
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Input:", input)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	atomic.AddUint64(&run.stats.OutputBytes, uint64(len(output)))
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Output:", output)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, tool string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print("*** Tool Not Found ***", tool)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}

func (r *run) bytes() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]byte(nil), r.w.Bytes()...)
}
