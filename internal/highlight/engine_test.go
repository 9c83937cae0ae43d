package highlight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/cmdhl/internal/cachemanager"
	"github.com/zjrosen/cmdhl/internal/token"
	"github.com/zjrosen/cmdhl/internal/tracing"
)

const commandRules = `
rules:
  - match:
      - kind: command
        hl: command
`

func cmdTree(words ...[2]int) token.Tree {
	tree := token.Tree{{Start: words[0][0], Finish: words[0][1], Kind: "command"}}
	for _, w := range words[1:] {
		tree = append(tree, token.Token{Start: w[0], Finish: w[1], Kind: "STRING"})
	}
	return tree
}

func newTestEngine(t *testing.T, cfg EngineConfig) (*Engine, *fakeParser, *recorder) {
	t.Helper()
	p := newFakeParser()
	r := &recorder{}
	return NewEngine(p, r, loadRules(t, commandRules), cfg), p, r
}

func TestEngine_UpdateEmitsToNamespace(t *testing.T) {
	e, p, r := newTestEngine(t, EngineConfig{Namespace: 3})
	p.add("ls -l", true, cmdTree([2]int{0, 2}, [2]int{3, 5}))

	spans, err := e.Update(context.Background(), "ls -l")
	require.NoError(t, err)
	require.Equal(t, []Span{{Start: 0, Finish: 2, Style: "command"}}, spans)
	require.Equal(t, []renderCall{
		{op: "clear", ns: 3},
		{op: "add", ns: 3, span: spans[0]},
		{op: "redraw"},
	}, r.calls)

	last, ok := e.Last()
	require.True(t, ok)
	require.True(t, last.Complete)
	require.NotEmpty(t, e.Session())
}

func TestEngine_EmptyBuffer(t *testing.T) {
	e, _, r := newTestEngine(t, EngineConfig{})
	spans, err := e.Update(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, spans)
	require.Equal(t, []renderCall{{op: "clear"}, {op: "redraw"}}, r.calls)
}

func TestEngine_ReusesOnTrailingWhitespace(t *testing.T) {
	e, p, r := newTestEngine(t, EngineConfig{})
	p.add("ls", true, cmdTree([2]int{0, 2}))

	first, err := e.Update(context.Background(), "ls")
	require.NoError(t, err)
	r.reset()

	for _, text := range []string{"ls ", "ls  \t", "ls  \t"} {
		spans, err := e.Update(context.Background(), text)
		require.NoError(t, err)
		require.Equal(t, first, spans)
	}
	require.Equal(t, 1, p.calls, "whitespace appends never reparse")
	require.Empty(t, r.calls, "renderer already shows these spans")
	require.Equal(t, 3, e.Stats().Reused)
}

func TestEngine_NoReuse(t *testing.T) {
	tests := []struct {
		name     string
		complete bool
		prev     string
		next     string
		cfg      EngineConfig
	}{
		{name: "incomplete parse", complete: false, prev: `echo "`, next: `echo " `},
		{name: "non-whitespace appended", complete: true, prev: "ls", next: "ls -"},
		{name: "not a prefix", complete: true, prev: "ls", next: "l"},
		{name: "edited prefix", complete: true, prev: "ls ", next: "lx  "},
		{name: "disabled", complete: true, prev: "ls", next: "ls ", cfg: EngineConfig{DisableReuse: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, p, r := newTestEngine(t, tt.cfg)
			p.add(tt.prev, tt.complete, cmdTree([2]int{0, 2}))

			_, err := e.Update(context.Background(), tt.prev)
			require.NoError(t, err)
			r.reset()

			_, err = e.Update(context.Background(), tt.next)
			require.NoError(t, err)
			require.Equal(t, 2, p.calls)
			require.NotEmpty(t, r.calls)
			require.Zero(t, e.Stats().Reused)
		})
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	e, p, r := newTestEngine(t, EngineConfig{})
	spans, err := e.Update(cancelledContext(), "ls")
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, spans)
	require.Zero(t, p.calls)
	require.Empty(t, r.calls)
	require.Equal(t, 1, e.Stats().Cancelled)
}

func TestEngine_CancelledDuringParse(t *testing.T) {
	e, p, r := newTestEngine(t, EngineConfig{})
	p.add("ls", true, cmdTree([2]int{0, 2}))

	ctx, cancel := context.WithCancel(context.Background())
	p.onParse = cancel

	_, err := e.Update(ctx, "ls")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, r.calls, "no partial results are rendered")
	_, ok := e.Last()
	require.False(t, ok)

	// The next keystroke starts afresh.
	p.onParse = nil
	spans, err := e.Update(context.Background(), "ls")
	require.NoError(t, err)
	require.Len(t, spans, 1)
}

func TestEngine_RecentBufferCache(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[string, Result]("results", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	e, p, r := newTestEngine(t, EngineConfig{Cache: cache})
	p.add("ls", false, cmdTree([2]int{0, 2}))
	p.add("ls -", false, cmdTree([2]int{0, 2}, [2]int{3, 4}))

	ctx := context.Background()
	for _, text := range []string{"ls", "ls -", "ls"} {
		_, err := e.Update(ctx, text)
		require.NoError(t, err)
	}
	require.Equal(t, 2, p.calls, "backspace returned to a cached buffer")
	require.Equal(t, 1, e.Stats().CacheHits)
	require.Equal(t, "redraw", r.calls[len(r.calls)-1].op, "cached results are still emitted")

	e.SetRules(ctx, loadRules(t, commandRules))
	require.Zero(t, cache.Len())
	_, err := e.Update(ctx, "ls")
	require.NoError(t, err)
	require.Equal(t, 3, p.calls)
}

func TestEngine_SetRulesAndRefresh(t *testing.T) {
	e, p, r := newTestEngine(t, EngineConfig{})
	p.add("ls", true, cmdTree([2]int{0, 2}))
	ctx := context.Background()

	_, err := e.Update(ctx, "ls")
	require.NoError(t, err)

	e.SetRules(ctx, loadRules(t, `
rules:
  - match:
      - kind: command
        hl: error
`))
	r.reset()

	spans, err := e.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "error", spans[0].Style)
	require.Equal(t, 2, p.calls)
	require.Len(t, r.calls, 3)
	require.Equal(t, 1, e.Rules().Len())
}

func TestEngine_Tracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	e, p, _ := newTestEngine(t, EngineConfig{Tracer: tp.Tracer("test")})
	p.add("ls", true, cmdTree([2]int{0, 2}))

	_, err := e.Update(context.Background(), "ls")
	require.NoError(t, err)
	_, err = e.Update(context.Background(), "ls ")
	require.NoError(t, err)

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{
		tracing.SpanParse, tracing.SpanApply, tracing.SpanResolve, tracing.SpanEmit, tracing.SpanUpdate,
		tracing.SpanUpdate,
	}, names)

	reused := rec.Ended()[5]
	require.Len(t, reused.Events(), 1)
	require.Equal(t, tracing.EventReused, reused.Events()[0].Name)
}
