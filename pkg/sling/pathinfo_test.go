package sling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParsePathInfo(t *testing.T) {
	cases := map[string]PathInfo{
		"/content/page": {ResourcePath: "/content/page"},
		"/content/page.html": {
			ResourcePath: "/content/page",
			Extension:    "html",
		},
		"/content/page.print.a4.html/suffix/path": {
			ResourcePath: "/content/page",
			Selectors:    []string{"print", "a4"},
			Extension:    "html",
			Suffix:       "/suffix/path",
		},
		"/content/page.html/file.txt": {
			ResourcePath: "/content/page",
			Extension:    "html",
			Suffix:       "/file.txt",
		},
	}

	for raw, want := range cases {
		got := ParsePathInfo(raw)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("ParsePathInfo(%q) mismatch (-want +got):\n%s", raw, diff)
		}
		if got.String() != raw {
			t.Fatalf("round trip of %q produced %q", raw, got.String())
		}
	}
}

func TestPathInfoWithOptions(t *testing.T) {
	base := ParsePathInfo("/content/page.print.html/old")

	got := base.WithOptions(&DispatchOptions{
		ReplaceSelectors: String(""),
		AddSelectors:     String("teaser.small"),
		ReplaceSuffix:    String("/new"),
	})
	want := PathInfo{
		ResourcePath: "/content/page",
		Selectors:    []string{"teaser", "small"},
		Extension:    "html",
		Suffix:       "/new",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	unchanged := base.WithOptions(nil)
	if diff := cmp.Diff(base, unchanged); diff != "" {
		t.Fatalf("nil options changed path info (-want +got):\n%s", diff)
	}
	if base.SelectorString() != "print" {
		t.Fatalf("base mutated: %q", base.SelectorString())
	}
}

func TestDispatchOptionsString(t *testing.T) {
	var opts *DispatchOptions
	if !opts.IsZero() || opts.String() != "{}" {
		t.Fatalf("nil options should be zero")
	}
	opts = &DispatchOptions{ForceResourceType: String("foo/bar"), ReplaceSuffix: String("")}
	if got := opts.String(); got != "{forceResourceType=foo/bar, replaceSuffix=}" {
		t.Fatalf("unexpected string %q", got)
	}
	clone := opts.Clone()
	clone.ForceResourceType = nil
	if opts.ForceResourceType == nil {
		t.Fatalf("clone shares fields with original")
	}
}
