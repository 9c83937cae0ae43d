// Package reload watches the rules file and republishes the compiled rule
// set whenever it changes.
//
// A file that fails to load is reported as a FailedEvent and never replaces
// the rule set subscribers already hold.
package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/pubsub"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/tracing"
	"github.com/zjrosen/cmdhl/internal/watcher"
)

// Result is the payload of a reload event. Exactly one of Set and Err is
// set.
type Result struct {
	Path string
	Set  *rules.Set
	Err  error
}

// LoadFunc compiles the rules file at path.
type LoadFunc func(path string) (*rules.Set, error)

// Config configures a Reloader.
type Config struct {
	// Path is the rules file to watch.
	Path string
	// Base is the style registry rule files layer their styles over.
	Base *styles.Registry
	// Debounce coalesces bursts of file events. Zero uses the watcher
	// default.
	Debounce time.Duration
	// Tracer records one span per reload. Nil uses a no-op tracer.
	Tracer trace.Tracer
	// Load overrides how the file is compiled. Nil uses rules.LoadFile.
	Load LoadFunc
}

// Reloader turns file changes into ReloadedEvent and FailedEvent messages.
type Reloader struct {
	path    string
	load    LoadFunc
	tracer  trace.Tracer
	cfg     watcher.Config
	broker  *pubsub.Broker[Result]
	watcher *watcher.Watcher

	mu     sync.Mutex
	base   *styles.Registry
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a reloader. Start begins watching.
func New(cfg Config) (*Reloader, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("reload: rules path is required")
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracing.DefaultServiceName)
	}
	wcfg := watcher.DefaultConfig(cfg.Path)
	if cfg.Debounce > 0 {
		wcfg.DebounceDur = cfg.Debounce
	}
	r := &Reloader{
		path:   cfg.Path,
		load:   cfg.Load,
		base:   cfg.Base,
		tracer: tracer,
		cfg:    wcfg,
		broker: pubsub.NewBroker[Result](),
	}
	if r.load == nil {
		r.load = func(path string) (*rules.Set, error) {
			return rules.LoadFile(path, r.Base())
		}
	}
	return r, nil
}

// Base returns the registry the next reload compiles against.
func (r *Reloader) Base() *styles.Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.base
}

// SetBase swaps the registry used by later reloads, e.g. after the theme
// changes.
func (r *Reloader) SetBase(reg *styles.Registry) {
	r.mu.Lock()
	r.base = reg
	r.mu.Unlock()
}

// Broker returns the broker reload results are published on.
func (r *Reloader) Broker() *pubsub.Broker[Result] {
	return r.broker
}

// Reload compiles the rules file once and publishes the result.
func (r *Reloader) Reload(ctx context.Context) Result {
	_, span := r.tracer.Start(ctx, tracing.SpanReload,
		trace.WithAttributes(attribute.String(tracing.AttrRulesPath, r.path)))
	defer span.End()

	set, err := r.load(r.path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatRules, "Rules reload rejected, keeping previous rules", err, "path", r.path)
		res := Result{Path: r.path, Err: err}
		r.broker.Publish(pubsub.FailedEvent, res)
		return res
	}

	span.SetAttributes(attribute.Int(tracing.AttrRules, set.Len()))
	log.Info(log.CatRules, "Rules reloaded", "path", r.path, "rules", set.Len())
	res := Result{Path: r.path, Set: set}
	r.broker.Publish(pubsub.ReloadedEvent, res)
	return res
}

// Start watches the rules file until ctx is cancelled or Stop is called.
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher != nil {
		return fmt.Errorf("reload: already started")
	}

	w, err := watcher.New(r.cfg)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	r.watcher = w
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, changes, r.done)
	log.Debug(log.CatWatcher, "Watching rules file", "path", r.path)
	return nil
}

func (r *Reloader) loop(ctx context.Context, changes <-chan struct{}, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			r.Reload(ctx)
		}
	}
}

// Stop ends watching and closes the broker.
func (r *Reloader) Stop() error {
	r.mu.Lock()
	w, cancel, done := r.watcher, r.cancel, r.done
	r.watcher, r.cancel, r.done = nil, nil, nil
	r.mu.Unlock()

	var err error
	if w != nil {
		cancel()
		<-done
		err = w.Stop()
	}
	r.broker.Close()
	return err
}
