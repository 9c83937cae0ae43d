package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/cmdhl/internal/pubsub"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/tracing"
)

const validRules = `
rules:
  - name: command
    match:
      - kind: command
        hl: command
`

const twoRules = validRules + `
  - name: flag
    match:
      - kind: STRING
        regex: ^-
        hl: flag
`

func writeRules(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func baseRegistry(t *testing.T) *styles.Registry {
	t.Helper()
	reg, err := styles.FromPreset("default")
	require.NoError(t, err)
	return reg
}

func next(t *testing.T, ch <-chan pubsub.Event[Result]) pubsub.Event[Result] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "broker closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload event")
	}
	return pubsub.Event[Result]{}
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestReload_PublishesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, validRules)

	r, err := New(Config{Path: path, Base: baseRegistry(t)})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Broker().Subscribe(ctx)

	res := r.Reload(ctx)
	require.NoError(t, res.Err)
	require.Equal(t, 1, res.Set.Len())

	ev := next(t, ch)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.Same(t, res.Set, ev.Payload.Set)
	require.Equal(t, path, ev.Payload.Path)
}

func TestReload_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "rules:\n  - name: broken\n    match:\n      - regex: '('\n")

	r, err := New(Config{Path: path, Base: baseRegistry(t)})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Broker().Subscribe(ctx)

	res := r.Reload(ctx)
	require.Error(t, res.Err)
	require.Nil(t, res.Set)

	ev := next(t, ch)
	require.Equal(t, pubsub.FailedEvent, ev.Type)
	require.ErrorContains(t, ev.Payload.Err, "rule 0 (broken)")
}

func TestReload_CustomLoader(t *testing.T) {
	boom := errors.New("boom")
	r, err := New(Config{
		Path: "rules.yaml",
		Load: func(string) (*rules.Set, error) { return nil, boom },
	})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	res := r.Reload(context.Background())
	require.ErrorIs(t, res.Err, boom)
}

func TestReload_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	r, err := New(Config{
		Path:   "missing.yaml",
		Base:   styles.NewRegistry(),
		Tracer: tp.Tracer("test"),
	})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	res := r.Reload(context.Background())
	require.Error(t, res.Err)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, tracing.SpanReload, ended[0].Name())
	require.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestStart_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, validRules)

	r, err := New(Config{Path: path, Base: baseRegistry(t), Debounce: 30 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Broker().Subscribe(ctx)
	require.NoError(t, r.Start(ctx))
	require.Error(t, r.Start(ctx), "second start")

	writeRules(t, path, twoRules)
	ev := next(t, ch)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.Equal(t, 2, ev.Payload.Set.Len())

	writeRules(t, path, "rules: [")
	ev = next(t, ch)
	require.Equal(t, pubsub.FailedEvent, ev.Type)
	require.Error(t, ev.Payload.Err)
}

func TestStop_ClosesBroker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, validRules)

	r, err := New(Config{Path: path, Base: baseRegistry(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Broker().Subscribe(ctx)
	require.NoError(t, r.Start(ctx))

	require.NoError(t, r.Stop())
	_, ok := <-ch
	require.False(t, ok)
	require.NoError(t, r.Stop())
}

func TestSetBase_UsedByLaterReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, validRules)

	r, err := New(Config{Path: path, Base: baseRegistry(t)})
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	plain, err := styles.FromPreset("plain")
	require.NoError(t, err)
	r.SetBase(plain)
	require.Same(t, plain, r.Base())

	res := r.Reload(context.Background())
	require.NoError(t, res.Err)
	st, ok := res.Set.Styles.Get(styles.NameCommand)
	require.True(t, ok)
	require.True(t, st.IsZero())
}
