package sling

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "/content/includes/foo", want: "/content/includes/foo", ok: true},
		{in: "/content/pongo2/page/../includes/foo", want: "/content/pongo2/includes/foo", ok: true},
		{in: "/content/pongo2/page/../../includes/foo", want: "/content/includes/foo", ok: true},
		{in: "/content/./a//b/", want: "/content/a/b", ok: true},
		{in: "/", want: "/", ok: true},
		{in: "a/./b/../c", want: "a/c", ok: true},
		{in: "/content/../..", ok: false},
		{in: "../a", ok: false},
	}

	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if ok != tc.ok {
			t.Fatalf("Normalize(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParentAndName(t *testing.T) {
	if got := Parent("/content/includes/foo"); got != "/content/includes" {
		t.Fatalf("unexpected parent %q", got)
	}
	if got := Parent("/content"); got != "/" {
		t.Fatalf("unexpected parent %q", got)
	}
	if got := Parent("/"); got != "" {
		t.Fatalf("unexpected parent %q", got)
	}
	if got := Name("/apps/pongo2/page/include"); got != "include" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestSyntheticResource(t *testing.T) {
	res := NewSyntheticResource(nil, "/content/missing", "foo/bar")
	if res.Path() != "/content/missing" || res.ResourceType() != "foo/bar" {
		t.Fatalf("unexpected synthetic resource %v", res)
	}
	if res.ResourceResolver() != nil {
		t.Fatalf("expected nil resolver")
	}
}
