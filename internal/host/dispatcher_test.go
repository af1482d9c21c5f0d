package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flat-backend/internal/template"
)

type fetcherFunc func(kind template.Kind, name string) (string, error)

func (f fetcherFunc) FetchTemplate(_ context.Context, kind template.Kind, name string) (string, error) {
	return f(kind, name)
}

func TestDispatcher_FallbackWithoutHandlers(t *testing.T) {
	d := NewDispatcher(fetcherFunc(func(kind template.Kind, name string) (string, error) {
		return "db:" + kind.String() + ":" + name, nil
	}))

	got, err := d.FetchForm(context.Background(), "comments")
	if err != nil || got != "db:form:comments" {
		t.Fatalf("expected fallback content, got %q (%v)", got, err)
	}
	got, err = d.FetchPage(context.Background(), "default")
	if err != nil || got != "db:page:default" {
		t.Fatalf("expected fallback content, got %q (%v)", got, err)
	}
}

func TestDispatcher_RegisteredFetcherWins(t *testing.T) {
	d := NewDispatcher(fetcherFunc(func(template.Kind, string) (string, error) {
		t.Fatal("fallback must not be called")
		return "", nil
	}))
	d.HandleTemplates(fetcherFunc(func(template.Kind, string) (string, error) {
		return "first", nil
	}))
	d.HandleTemplates(fetcherFunc(func(template.Kind, string) (string, error) {
		return "second", nil
	}))

	got, err := d.FetchForm(context.Background(), "comments")
	if err != nil || got != "second" {
		t.Fatalf("expected last registered fetcher, got %q (%v)", got, err)
	}
}

func TestDispatcher_NoFetcher(t *testing.T) {
	d := NewDispatcher(nil)
	_, err := d.FetchPage(context.Background(), "default")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDispatcher_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher(fetcherFunc(func(template.Kind, string) (string, error) {
		return "", boom
	}))
	if _, err := d.FetchForm(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestDispatcher_Ready(t *testing.T) {
	d := NewDispatcher(nil)
	if !d.Ready(context.Background()) {
		t.Fatal("expected ready with no listeners to succeed")
	}

	var calls []string
	d.HandleReady(ReadyFunc(func(context.Context) bool {
		calls = append(calls, "a")
		return false
	}))
	d.HandleReady(LogReady("b", ReadyFunc(func(context.Context) bool {
		calls = append(calls, "b")
		return true
	})))

	if d.Ready(context.Background()) {
		t.Fatal("expected ready to fail when a listener fails")
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("expected every listener to run in order, got %v", calls)
	}
}

func TestDispatcher_ReadyRunsOneAtATime(t *testing.T) {
	d := NewDispatcher(nil)
	var active, peak, runs atomic.Int32
	d.HandleReady(ReadyFunc(func(context.Context) bool {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		runs.Add(1)
		return true
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !d.Ready(context.Background()) {
				t.Error("expected ready to succeed")
			}
		}()
	}
	wg.Wait()

	if runs.Load() != 8 {
		t.Fatalf("expected 8 runs, got %d", runs.Load())
	}
	if peak.Load() != 1 {
		t.Fatalf("expected ready events to run one at a time, peak was %d", peak.Load())
	}
}
