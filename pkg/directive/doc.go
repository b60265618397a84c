// Package directive lets templates call Go code with named parameters.
//
// A directive is any template model implementing Directive. Templates invoke
// it through the call tag using the namespace and name it was registered
// under:
//
//	{% call sling.include include="/content/includes/foo" resourceType="foo/bar" %}
//
// Include is the directive shipped with this package. It renders another
// resource through the host's request dispatcher, captures the nested
// response and writes the captured text in place of the tag.
package directive
