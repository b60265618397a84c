package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func names(providers []Provider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Namespace()+"."+p.Name()+"@"+p.Model().(string))
	}
	return out
}

func TestRegistry_ListOrdersByRankingThenNewestFirst(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Static("sling", "include", 0, "first"))
	reg.MustRegister(Static("sling", "include", 10, "high"))
	reg.MustRegister(Static("sling", "include", 0, "second"))
	reg.MustRegister(Static("site", "title", -5, "low"))

	got := names(reg.List())
	want := []string{
		"site.title@low",
		"sling.include@second",
		"sling.include@first",
		"sling.include@high",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	first := reg.MustRegister(Static("a", "b", 0, "x"))
	reg.MustRegister(Static("a", "c", 0, "y"))

	first.Unregister()
	first.Unregister()

	if reg.Len() != 1 {
		t.Fatalf("expected 1 provider, got %d", reg.Len())
	}
	if got := names(reg.List()); len(got) != 1 || got[0] != "a.c@y" {
		t.Fatalf("unexpected providers %v", got)
	}
}

func TestRegistry_RegisterRejectsNil(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register(nil); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	var nilReg *Registry
	if _, err := nilReg.Register(Static("a", "b", 0, "c")); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestTracker_SeesLiveChangesAndStopsAfterClose(t *testing.T) {
	reg := NewRegistry()
	var events []string
	tracker := reg.Track(func(e Event) {
		events = append(events, e.Kind.String()+":"+e.Provider.Name())
	})

	regA := reg.MustRegister(Static("ns", "a", 0, "a"))
	if got := len(tracker.Providers()); got != 1 {
		t.Fatalf("expected 1 tracked provider, got %d", got)
	}
	regA.Unregister()
	if got := len(tracker.Providers()); got != 0 {
		t.Fatalf("expected 0 tracked providers, got %d", got)
	}

	tracker.Close()
	tracker.Close()
	reg.MustRegister(Static("ns", "b", 0, "b"))

	if tracker.Providers() != nil {
		t.Fatalf("closed tracker should report no providers")
	}
	want := []string{"registered:a", "unregistered:a"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}
