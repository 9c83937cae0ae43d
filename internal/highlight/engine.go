package highlight

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/cmdhl/internal/cachemanager"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/token"
	"github.com/zjrosen/cmdhl/internal/tracing"
)

// Parser turns buffer text into a token tree. complete reports whether the
// text is a syntactically terminated command.
type Parser interface {
	Parse(text string) (complete bool, tree token.Tree)
}

// Renderer owns the drawing surface. Spans are added in paint order; later
// spans override earlier ones where they overlap.
type Renderer interface {
	ClearNamespace(ns int)
	AddHighlight(span Span, ns int)
	RequestRedraw()
}

// Result is the outcome of evaluating one buffer.
type Result struct {
	Complete bool
	Tree     token.Tree
	Spans    []Span
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Namespace is the renderer namespace the engine owns.
	Namespace int

	NestedPriority NestedPriority

	// DisableReuse turns off reusing the previous result when only
	// whitespace was appended to a complete command.
	DisableReuse bool

	// Cache remembers results for recently seen buffers. Nil disables it.
	Cache    cachemanager.CacheManager[string, Result]
	CacheTTL time.Duration

	// Tracer records one span per update. Nil uses a no-op tracer.
	Tracer trace.Tracer
}

// Stats counts what the engine did since it was created.
type Stats struct {
	Updates   int
	Parses    int
	Reused    int
	CacheHits int
	Cancelled int
}

// Engine re-evaluates the buffer on every change and pushes the spans to the
// renderer. It is not safe for concurrent use; call it from the goroutine
// that owns the input loop.
type Engine struct {
	parser   Parser
	renderer Renderer
	set      *rules.Set
	cfg      EngineConfig
	tracer   trace.Tracer
	results  *cachemanager.ReadThroughCache[string, Result, string]
	session  string

	last     *Result
	lastText string
	stats    Stats
}

// NewEngine creates an engine drawing into cfg.Namespace of r.
func NewEngine(p Parser, r Renderer, set *rules.Set, cfg EngineConfig) *Engine {
	e := &Engine{
		parser:   p,
		renderer: r,
		set:      set,
		cfg:      cfg,
		tracer:   cfg.Tracer,
		session:  uuid.NewString(),
	}
	if e.tracer == nil {
		e.tracer = noop.NewTracerProvider().Tracer(tracing.DefaultServiceName)
	}
	e.results = cachemanager.NewReadThroughCache(cfg.Cache, e.evaluate, cfg.Cache == nil)
	log.Debug(log.CatHighlight, "Engine created", "session", e.session, "rules", set.Len(), "cache", e.results.Enabled())
	return e
}

// Session returns the id that tags this engine's logs and traces.
func (e *Engine) Session() string {
	return e.session
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Rules returns the active rule set.
func (e *Engine) Rules() *rules.Set {
	return e.set
}

// Last returns the most recent result, if any.
func (e *Engine) Last() (Result, bool) {
	if e.last == nil {
		return Result{}, false
	}
	return *e.last, true
}

// Update evaluates text and replaces the renderer namespace with the new
// spans. The previous result is reused without parsing when the previous
// parse was complete and text only appends whitespace to it.
//
// ctx is checked between phases. A cancelled update returns ctx.Err() and
// leaves the renderer untouched.
func (e *Engine) Update(ctx context.Context, text string) ([]Span, error) {
	e.stats.Updates++
	ctx, span := e.tracer.Start(ctx, tracing.SpanUpdate, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, e.session),
		attribute.Int(tracing.AttrBufferLength, len(text)),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(span, err)
	}

	if e.canReuse(text) {
		e.stats.Reused++
		e.lastText = text
		span.AddEvent(tracing.EventReused)
		span.SetAttributes(attribute.Bool(tracing.AttrReused, true))
		log.Debug(log.CatHighlight, "Reused previous result", "session", e.session, "len", len(text))
		return e.last.Spans, nil
	}

	res, cached, err := e.results.GetWithRefresh(ctx, text, text, e.cfg.CacheTTL)
	if err != nil {
		return nil, e.cancelled(span, err)
	}
	if cached {
		e.stats.CacheHits++
		span.AddEvent(tracing.EventCacheHit)
	}
	if err := ctx.Err(); err != nil {
		return nil, e.cancelled(span, err)
	}

	e.emit(ctx, res.Spans)
	e.last = &res
	e.lastText = text

	span.SetAttributes(
		attribute.Bool(tracing.AttrComplete, res.Complete),
		attribute.Bool(tracing.AttrCached, cached),
		attribute.Int(tracing.AttrSpans, len(res.Spans)),
	)
	return res.Spans, nil
}

// Refresh re-evaluates the current buffer, bypassing reuse.
func (e *Engine) Refresh(ctx context.Context) ([]Span, error) {
	e.last = nil
	return e.Update(ctx, e.lastText)
}

// SetRules swaps the rule set. Cached results were computed with the old
// rules, so they are dropped and the next Update parses again.
func (e *Engine) SetRules(ctx context.Context, set *rules.Set) {
	e.set = set
	e.last = nil
	if err := e.results.Flush(ctx); err != nil {
		log.ErrorErr(log.CatCache, "Failed to flush results", err, "session", e.session)
	}
	log.Info(log.CatHighlight, "Rules replaced", "session", e.session, "rules", set.Len())
}

func (e *Engine) canReuse(text string) bool {
	if e.cfg.DisableReuse || e.last == nil || !e.last.Complete {
		return false
	}
	if !strings.HasPrefix(text, e.lastText) {
		return false
	}
	return strings.TrimSpace(text[len(e.lastText):]) == ""
}

// evaluate runs parse, apply and resolve. It returns ctx.Err() as soon as a
// phase finishes after cancellation.
func (e *Engine) evaluate(ctx context.Context, text string) (Result, error) {
	e.stats.Parses++

	_, span := e.tracer.Start(ctx, tracing.SpanParse)
	complete, tree := e.parser.Parse(text)
	span.SetAttributes(
		attribute.Bool(tracing.AttrComplete, complete),
		attribute.Int(tracing.AttrTokens, token.Count(tree)),
	)
	span.End()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	_, span = e.tracer.Start(ctx, tracing.SpanApply, trace.WithAttributes(attribute.Int(tracing.AttrRules, e.set.Len())))
	hits := Apply(e.set, tree, text, ApplyOptions{NestedPriority: e.cfg.NestedPriority})
	span.SetAttributes(attribute.Int(tracing.AttrHits, len(hits)))
	span.End()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	_, span = e.tracer.Start(ctx, tracing.SpanResolve)
	spans := Resolve(hits, text)
	span.SetAttributes(attribute.Int(tracing.AttrSpans, len(spans)))
	span.End()

	log.Debug(log.CatHighlight, "Evaluated buffer",
		"session", e.session, "len", len(text), "complete", complete, "hits", len(hits), "spans", len(spans))
	return Result{Complete: complete, Tree: tree, Spans: spans}, nil
}

func (e *Engine) emit(ctx context.Context, spans []Span) {
	_, span := e.tracer.Start(ctx, tracing.SpanEmit, trace.WithAttributes(attribute.Int(tracing.AttrSpans, len(spans))))
	defer span.End()

	ns := e.cfg.Namespace
	e.renderer.ClearNamespace(ns)
	for _, s := range spans {
		e.renderer.AddHighlight(s, ns)
	}
	e.renderer.RequestRedraw()
}

func (e *Engine) cancelled(span trace.Span, err error) error {
	e.stats.Cancelled++
	span.AddEvent(tracing.EventCancelled)
	span.SetStatus(codes.Error, err.Error())
	log.Debug(log.CatHighlight, "Update cancelled", "session", e.session, "error", err)
	return err
}
