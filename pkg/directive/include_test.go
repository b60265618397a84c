package directive

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/flosch/pongo2/v6"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

func run(t *testing.T, d *Include, vars map[string]any, params Params) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := d.Execute(NewEnvironment(vars, &out), params)
	return out.String(), err
}

func TestInclude_MissingRenderingContext(t *testing.T) {
	d := NewInclude(WithLogger(quietLogger()))
	params := Params{ParamInclude: pongo2.AsValue("/content/includes/foo")}

	cases := map[string]struct {
		vars map[string]any
		want string
	}{
		"request":  {vars: map[string]any{sling.BindingResponse: newFakeResponse()}, want: "request is nil"},
		"response": {vars: map[string]any{sling.BindingRequest: newRequest(nil)}, want: "response is nil"},
		"boxed nil request": {
			vars: map[string]any{sling.BindingRequest: pongo2.AsValue(nil), sling.BindingResponse: newFakeResponse()},
			want: "request is nil",
		},
	}
	for name, tc := range cases {
		out, err := run(t, d, tc.vars, params)
		if !errors.Is(err, ErrMissingContext) {
			t.Fatalf("%s: expected ErrMissingContext, got %v", name, err)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q should mention %q", name, err, tc.want)
		}
		if out != "" {
			t.Fatalf("%s: expected no output, got %q", name, out)
		}
	}
}

func TestInclude_UnresolvableTarget(t *testing.T) {
	dispatcher := &fakeDispatcher{text: "never"}
	d := NewInclude(WithLogger(quietLogger()))

	cases := map[string]Params{
		"missing":     {},
		"nil":         {ParamInclude: pongo2.AsValue(nil)},
		"unsupported": {ParamInclude: pongo2.AsValue(42)},
		"escapes":     {ParamInclude: pongo2.AsValue("/content/../../etc")},
		"relative":    {ParamInclude: pongo2.AsValue("../../../../etc")},
	}
	for name, params := range cases {
		req := newRequest(dispatcher)
		out, err := run(t, d, bindings(req, newFakeResponse()), params)
		if !errors.Is(err, ErrNoTarget) {
			t.Fatalf("%s: expected ErrNoTarget, got %v", name, err)
		}
		if out != "" {
			t.Fatalf("%s: expected no output, got %q", name, out)
		}
		if len(req.calls) != 0 {
			t.Fatalf("%s: expected no dispatch, got %d", name, len(req.calls))
		}
	}
	if dispatcher.calls != 0 {
		t.Fatalf("dispatcher should not run")
	}
}

func TestInclude_Resource(t *testing.T) {
	dispatcher := &fakeDispatcher{text: "<p>included</p>"}
	req := newRequest(dispatcher)
	target := &fakeResource{path: "/content/pongo2/include", resourceType: "pongo2/include"}
	d := NewInclude(WithLogger(quietLogger()))

	out, err := run(t, d, bindings(req, newFakeResponse()), Params{
		ParamInclude:      pongo2.AsValue(target),
		ParamResourceType: pongo2.AsValue("foo/bar"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "<p>included</p>" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(req.calls) != 1 || req.calls[0].resource != target {
		t.Fatalf("expected one dispatch for the resource, got %+v", req.calls)
	}
	// an explicit resource never turns into a synthetic one
	if got := req.calls[0].opts.ForceResourceType; got == nil || *got != "foo/bar" {
		t.Fatalf("forced resource type should pass through, got %v", got)
	}
}

func TestInclude_Paths(t *testing.T) {
	cases := []struct {
		include string
		want    string
	}{
		{include: "/content/includes/foo", want: "/content/includes/foo"},
		{include: "/content/./includes//foo/", want: "/content/includes/foo"},
		{include: "../../includes/foo", want: "/content/includes/foo"},
		{include: "../includes/foo", want: "/content/pongo2/includes/foo"},
		{include: "child", want: "/content/pongo2/page/child"},
	}

	for _, tc := range cases {
		req := newRequest(&fakeDispatcher{text: "ok"})
		out, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, newFakeResponse()), Params{
			ParamInclude: pongo2.AsValue(tc.include),
		})
		if err != nil {
			t.Fatalf("%s: execute: %v", tc.include, err)
		}
		if out != "ok" {
			t.Fatalf("%s: unexpected output %q", tc.include, out)
		}
		if len(req.calls) != 1 || req.calls[0].path != tc.want {
			t.Fatalf("%s: expected dispatch to %q, got %+v", tc.include, tc.want, req.calls)
		}
	}
}

func TestInclude_DispatchOptions(t *testing.T) {
	req := newRequest(&fakeDispatcher{text: "ok"})
	_, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, newFakeResponse()), Params{
		ParamInclude:          pongo2.AsValue("/content/includes/foo"),
		ParamResourceType:     pongo2.AsValue("foo/bar"),
		ParamReplaceSelectors: pongo2.AsValue(""),
		ParamAddSelectors:     pongo2.AsValue("teaser"),
		ParamReplaceSuffix:    pongo2.AsValue(nil),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := sling.DispatchOptions{
		ForceResourceType: sling.String("foo/bar"),
		ReplaceSelectors:  sling.String(""),
		AddSelectors:      sling.String("teaser"),
	}
	if diff := cmp.Diff(want, req.calls[0].opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if req.calls[0].path != "/content/includes/foo" {
		t.Fatalf("existing path should dispatch by path, got %+v", req.calls[0])
	}
}

func TestInclude_InvalidOptionType(t *testing.T) {
	req := newRequest(&fakeDispatcher{text: "ok"})
	out, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, newFakeResponse()), Params{
		ParamInclude:      pongo2.AsValue("/content/includes/foo"),
		ParamAddSelectors: pongo2.AsValue(3),
	})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if out != "" || len(req.calls) != 0 {
		t.Fatalf("expected no dispatch and no output")
	}
}

func TestInclude_SyntheticResourceForMissingPath(t *testing.T) {
	req := newRequest(&fakeDispatcher{text: "synthetic"})
	out, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, newFakeResponse()), Params{
		ParamInclude:      pongo2.AsValue("/content/missing"),
		ParamResourceType: pongo2.AsValue("foo/bar"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "synthetic" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(req.calls) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(req.calls))
	}
	call := req.calls[0]
	if call.resource == nil {
		t.Fatalf("expected dispatch by synthetic resource, got path %q", call.path)
	}
	if call.resource.Path() != "/content/missing" || call.resource.ResourceType() != "foo/bar" {
		t.Fatalf("unexpected synthetic resource %s (%s)", call.resource.Path(), call.resource.ResourceType())
	}
	if call.opts.ForceResourceType != nil {
		t.Fatalf("forced resource type must be cleared for the synthetic resource")
	}
}

func TestInclude_DispatcherUnavailable(t *testing.T) {
	req := newRequest(nil)
	out, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, newFakeResponse()), Params{
		ParamInclude: pongo2.AsValue("/content/includes/foo"),
	})
	if !errors.Is(err, ErrDispatcherUnavailable) {
		t.Fatalf("expected ErrDispatcherUnavailable, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestInclude_EmptyContentWritesNothing(t *testing.T) {
	dispatcher := &fakeDispatcher{text: ""}
	req := newRequest(dispatcher)
	d := NewInclude(WithLogger(quietLogger()))

	out, err := run(t, d, bindings(req, newFakeResponse()), Params{
		ParamInclude: pongo2.AsValue("/content/includes/foo"),
	})
	if err != nil {
		t.Fatalf("empty text is not an error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one nested render, got %d", dispatcher.calls)
	}
}

func TestInclude_BinaryContentFails(t *testing.T) {
	resp := newFakeResponse()
	req := newRequest(&fakeDispatcher{binary: []byte{0x89, 'P', 'N', 'G'}})
	out, err := run(t, NewInclude(WithLogger(quietLogger())), bindings(req, resp), Params{
		ParamInclude: pongo2.AsValue("/content/includes/foo"),
	})
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if !errors.Is(err, sling.ErrBinaryResponse) {
		t.Fatalf("expected ErrBinaryResponse in chain, got %v", err)
	}
	if out != "" || resp.body.Len() != 0 {
		t.Fatalf("binary content must not reach any output")
	}
}

func TestInclude_TransportFailurePolicies(t *testing.T) {
	cause := errors.New("servlet exploded")
	params := Params{ParamInclude: pongo2.AsValue("/content/includes/foo")}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ignore := NewInclude(WithLogger(logger))
	if ignore.Policy() != TransportFailureIgnore {
		t.Fatalf("default policy should ignore transport failures")
	}
	req := newRequest(&fakeDispatcher{err: cause})
	out, err := run(t, ignore, bindings(req, newFakeResponse()), params)
	if err != nil {
		t.Fatalf("ignore policy should not fail, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if !strings.Contains(logs.String(), "servlet exploded") {
		t.Fatalf("transport failure should be logged, got %q", logs.String())
	}

	fail := NewInclude(WithLogger(quietLogger()), WithTransportFailurePolicy(TransportFailureFail))
	req = newRequest(&fakeDispatcher{err: cause})
	out, err = run(t, fail, bindings(req, newFakeResponse()), params)
	if !errors.Is(err, ErrTransport) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrTransport wrapping the cause, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestInclude_Provider(t *testing.T) {
	d := NewInclude()
	p := d.Provider()
	if p.Namespace() != "sling" || p.Name() != "include" {
		t.Fatalf("unexpected provider %s.%s", p.Namespace(), p.Name())
	}
	if p.Model() != d {
		t.Fatalf("provider should expose the directive itself")
	}
}
