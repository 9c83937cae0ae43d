package cmd

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cmdhl/internal/app"
	"github.com/zjrosen/cmdhl/internal/cachemanager"
	"github.com/zjrosen/cmdhl/internal/config"
	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/render"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/shparse"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/tracing"
)

// highlighter bundles an engine with the buffer it paints.
type highlighter struct {
	engine   *highlight.Engine
	buffer   *render.Buffer
	registry *styles.Registry
	loader   app.RulesLoader
}

// rulesLoader compiles the configured rules file, or the built-in rules when
// none is configured.
func rulesLoader(c config.Config) app.RulesLoader {
	path := c.RulesPath()
	if path == "" {
		return rules.Default
	}
	return func(base *styles.Registry) (*rules.Set, error) {
		return rules.LoadFile(path, base)
	}
}

// newHighlighter builds the engine described by c.
func newHighlighter(c config.Config, tracer trace.Tracer) (*highlighter, error) {
	reg, err := c.Theme.Registry()
	if err != nil {
		return nil, err
	}
	loader := rulesLoader(c)
	set, err := loader(reg)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	nested, err := c.Highlight.Nested()
	if err != nil {
		return nil, err
	}

	var cache cachemanager.CacheManager[string, highlight.Result]
	if c.Cache.Enabled {
		cache = cachemanager.NewInMemoryCacheManager[string, highlight.Result](
			"highlight", c.Cache.TTL, cachemanager.DefaultCleanupInterval)
	}

	buf := render.NewBuffer(set.Styles)
	engine := highlight.NewEngine(
		shparse.New(shparse.Options{Comments: c.Parser.Comments}),
		buf,
		set,
		highlight.EngineConfig{
			Namespace:      buf.NewNamespace(),
			NestedPriority: nested,
			DisableReuse:   !c.Highlight.Reuse,
			Cache:          cache,
			CacheTTL:       c.Cache.TTL,
			Tracer:         tracer,
		},
	)
	return &highlighter{engine: engine, buffer: buf, registry: reg, loader: loader}, nil
}

// startTracing creates the provider configured by c. The returned function
// flushes and shuts it down.
func startTracing(c config.Config) (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}, nil
}
