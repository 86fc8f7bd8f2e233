package callbacks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct{ name string }

func (t *fakeTool) Name() string                                           { return t.name }
func (t *fakeTool) Description() string                                    { return "desc" }
func (t *fakeTool) Parameters() any                                        { return nil }
func (t *fakeTool) Call(ctx context.Context, input string) (string, error) { return "", nil }

func TestScratchpad_StartRun_EndRun(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx := WithRunID(context.Background(), "run1")
	sp.StartRun(ctx)

	r := sp.runs["run1"]
	require.NotNil(t, r)
	r.stats.ToolsCalls = 3
	r.stats.ToolsCallsFailed = 2
	r.stats.ToolNotFound = 1
	r.stats.InputBytes = 10
	r.stats.OutputBytes = 11

	stats, buf := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, "run1", stats.RunID)
	assert.Equal(t, uint32(3), stats.ToolsCalls)
	require.Contains(t, string(buf), "Run Started")
	require.Contains(t, string(buf), "Run Ended")
	require.Contains(t, string(buf), "Tool calls: 3, Failed: 2, Not Found: 1")
	require.Contains(t, string(buf), "Bytes In: 10, Bytes Out: 11")

	_, ok := sp.runs["run1"]
	assert.False(t, ok)

	s2, _ := sp.EndRun(ctx)
	assert.Nil(t, s2)
}

func TestScratchpad_getRun_nil(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeDefault)
	assert.Nil(t, sp.getRun(context.Background()))
	assert.Nil(t, sp.getRun(WithRunID(context.Background(), "unknown")))

	// no run ID: nothing recorded
	sp.StartRun(context.Background())
	assert.Empty(t, sp.runs)
}

func TestScratchpad_OnCallbacks(t *testing.T) {
	t.Parallel()
	sp := NewScratchpad(ModeVerbose)
	ctx := WithRunID(context.Background(), "run2")
	sp.StartRun(ctx)

	tool := &fakeTool{name: "T1"}
	sp.OnToolStart(ctx, tool, "tinput")
	sp.OnToolEnd(ctx, tool, "tinput", "toutput")
	sp.OnToolError(ctx, tool, "tinput", errors.New("terr"))
	sp.OnToolNotFound(ctx, "T2")

	stats, output := sp.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, uint32(1), stats.ToolsCalls)
	assert.Equal(t, uint32(1), stats.ToolsCallsSucceeded)
	assert.Equal(t, uint32(1), stats.ToolsCallsFailed)
	assert.Equal(t, uint32(1), stats.ToolNotFound)
	assert.Equal(t, uint64(6), stats.InputBytes)
	assert.Equal(t, uint64(7), stats.OutputBytes)

	outStr := string(output)
	assert.Contains(t, outStr, "T1 *** Tool Start ***")
	assert.Contains(t, outStr, "T1 Output: toutput")
	assert.Contains(t, outStr, "T1 *** Tool End ***")
	assert.Contains(t, outStr, "T1 *** Tool Error *** terr")
	assert.Contains(t, outStr, "*** Tool Not Found *** T2")

	// no run: ignored
	sp.OnToolStart(ctx, tool, "tinput")
	sp.OnToolEnd(ctx, tool, "tinput", "toutput")
	sp.OnToolError(ctx, tool, "tinput", errors.New("terr2"))
	sp.OnToolNotFound(ctx, "T3")
}

func Test_run_print_format(t *testing.T) {
	r := &run{stats: RunStats{RunID: "r1"}}
	oldTimeFn := TimeNowFn
	TimeNowFn = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { TimeNowFn = oldTimeFn }()

	r.print("hello", "again")
	lines := strings.Split(r.w.String(), "\n")
	require.NotEmpty(t, lines[0])
	assert.Equal(t, "2024-01-01 12:00:00 r1 hello again", lines[0])
}
