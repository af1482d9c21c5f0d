// Package host is the event surface the resolver and importer plug into:
// template fetches for forms and pages, and the ready event fired once the
// application has started.
package host

import (
	"context"
	"errors"
	"log"
	"sync"

	"flat-backend/internal/template"
)

// TemplateFetcher answers template fetches. It returns template.ErrNotFound
// when nothing matches.
type TemplateFetcher interface {
	FetchTemplate(ctx context.Context, kind template.Kind, name string) (string, error)
}

// ReadyListener handles the ready event and reports whether it succeeded.
type ReadyListener interface {
	OnReady(ctx context.Context) bool
}

// Dispatcher routes template fetches to the most recently registered fetcher,
// or to Fallback when none is registered.
type Dispatcher struct {
	Fallback TemplateFetcher

	mu        sync.RWMutex
	fetchers  []TemplateFetcher
	listeners []ReadyListener

	// readyMu keeps ready events from overlapping.
	readyMu sync.Mutex
}

func NewDispatcher(fallback TemplateFetcher) *Dispatcher {
	return &Dispatcher{Fallback: fallback}
}

// HandleTemplates registers f for form and page fetches.
func (d *Dispatcher) HandleTemplates(f TemplateFetcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchers = append(d.fetchers, f)
}

// HandleReady registers l for the ready event.
func (d *Dispatcher) HandleReady(l ReadyListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

func (d *Dispatcher) FetchForm(ctx context.Context, name string) (string, error) {
	return d.fetch(ctx, template.Form, name)
}

func (d *Dispatcher) FetchPage(ctx context.Context, name string) (string, error) {
	return d.fetch(ctx, template.Page, name)
}

func (d *Dispatcher) fetch(ctx context.Context, kind template.Kind, name string) (string, error) {
	d.mu.RLock()
	var f TemplateFetcher
	if n := len(d.fetchers); n > 0 {
		f = d.fetchers[n-1]
	}
	d.mu.RUnlock()

	if f == nil {
		f = d.Fallback
	}
	if f == nil {
		return "", template.ErrNotFound
	}
	return f.FetchTemplate(ctx, kind, name)
}

// Ready fires the ready event. Every listener runs even after a failure;
// the result is false if any listener failed. Concurrent calls run one at
// a time.
func (d *Dispatcher) Ready(ctx context.Context) bool {
	d.readyMu.Lock()
	defer d.readyMu.Unlock()

	d.mu.RLock()
	listeners := append([]ReadyListener(nil), d.listeners...)
	d.mu.RUnlock()

	ok := true
	for _, l := range listeners {
		if !l.OnReady(ctx) {
			ok = false
		}
	}
	return ok
}

// IsNotFound reports whether err means no template matched.
func IsNotFound(err error) bool {
	return errors.Is(err, template.ErrNotFound)
}

// ReadyFunc adapts a plain function to ReadyListener.
type ReadyFunc func(ctx context.Context) bool

func (f ReadyFunc) OnReady(ctx context.Context) bool { return f(ctx) }

// LogReady wraps l so a failed ready event is logged under name.
func LogReady(name string, l ReadyListener) ReadyListener {
	return ReadyFunc(func(ctx context.Context) bool {
		if !l.OnReady(ctx) {
			log.Printf("ERROR: ready handler %s failed", name)
			return false
		}
		return true
	})
}
