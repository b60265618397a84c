package sling

import "strings"

// DispatchOptions adjust how a nested include addresses its target. A nil
// field leaves that facet of the request unmodified.
type DispatchOptions struct {
	// ForceResourceType renders the target as if it had this resource type.
	ForceResourceType *string
	// ReplaceSelectors replaces all selectors. An empty value removes them.
	ReplaceSelectors *string
	// AddSelectors appends selectors after the current (or replaced) ones.
	AddSelectors *string
	// ReplaceSuffix replaces the suffix. An empty value removes it.
	ReplaceSuffix *string
}

// String returns a pointer to s, for building DispatchOptions literals.
func String(s string) *string {
	return &s
}

// IsZero reports whether no option is set.
func (o *DispatchOptions) IsZero() bool {
	return o == nil || (o.ForceResourceType == nil &&
		o.ReplaceSelectors == nil &&
		o.AddSelectors == nil &&
		o.ReplaceSuffix == nil)
}

// Clone returns a copy that can be modified without affecting o.
func (o *DispatchOptions) Clone() *DispatchOptions {
	if o == nil {
		return &DispatchOptions{}
	}
	clone := *o
	return &clone
}

func (o *DispatchOptions) String() string {
	if o.IsZero() {
		return "{}"
	}
	var parts []string
	add := func(key string, value *string) {
		if value != nil {
			parts = append(parts, key+"="+*value)
		}
	}
	add("forceResourceType", o.ForceResourceType)
	add("replaceSelectors", o.ReplaceSelectors)
	add("addSelectors", o.AddSelectors)
	add("replaceSuffix", o.ReplaceSuffix)
	return "{" + strings.Join(parts, ", ") + "}"
}
