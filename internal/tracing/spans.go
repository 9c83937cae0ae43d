package tracing

// Span names for one engine update and its phases.
const (
	SpanUpdate  = "highlight.update"
	SpanParse   = "highlight.parse"
	SpanApply   = "highlight.apply"
	SpanResolve = "highlight.resolve"
	SpanEmit    = "highlight.emit"
	SpanReload  = "rules.reload"
)

// Span attribute keys.
const (
	AttrSessionID    = "session.id"
	AttrBufferLength = "buffer.length"
	AttrComplete     = "parse.complete"
	AttrTokens       = "parse.tokens"
	AttrRules        = "rules.count"
	AttrHits         = "highlight.hits"
	AttrSpans        = "highlight.spans"
	AttrReused       = "highlight.reused"
	AttrCached       = "highlight.cached"
	AttrRulesPath    = "rules.path"
)

// Event names recorded on update spans.
const (
	EventReused    = "result.reused"
	EventCacheHit  = "cache.hit"
	EventCancelled = "update.cancelled"
)
