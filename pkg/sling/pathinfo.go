package sling

import "strings"

// PathInfo is the decomposed request path: the resource path followed by
// optional selectors, an extension and a suffix, as in
// /content/page.print.a4.html/suffix/path.
type PathInfo struct {
	ResourcePath string
	Selectors    []string
	Extension    string
	Suffix       string
}

// ParsePathInfo splits a request path. The first dot that does not open a
// path segment starts the selector/extension string; a slash after that dot
// starts the suffix. Resource names therefore cannot contain dots.
func ParsePathInfo(raw string) PathInfo {
	info := PathInfo{ResourcePath: raw}

	dot := firstDot(raw)
	if dot < 0 {
		return info
	}

	info.ResourcePath = raw[:dot]
	rest := raw[dot+1:]
	if idx := strings.Index(rest, "/"); idx >= 0 {
		info.Suffix = rest[idx:]
		rest = rest[:idx]
	}

	parts := strings.Split(rest, ".")
	info.Extension = parts[len(parts)-1]
	for _, selector := range parts[:len(parts)-1] {
		if selector != "" {
			info.Selectors = append(info.Selectors, selector)
		}
	}
	return info
}

func firstDot(raw string) int {
	segmentStart := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '/':
			segmentStart = i + 1
		case '.':
			if i > segmentStart {
				return i
			}
		}
	}
	return -1
}

// SelectorString joins the selectors with dots.
func (p PathInfo) SelectorString() string {
	return strings.Join(p.Selectors, ".")
}

// WithOptions returns a copy of p with the selector and suffix overrides of
// opts applied. ForceResourceType is not a path facet and is ignored here.
func (p PathInfo) WithOptions(opts *DispatchOptions) PathInfo {
	out := PathInfo{
		ResourcePath: p.ResourcePath,
		Selectors:    append([]string(nil), p.Selectors...),
		Extension:    p.Extension,
		Suffix:       p.Suffix,
	}
	if opts == nil {
		return out
	}
	if opts.ReplaceSelectors != nil {
		out.Selectors = splitSelectors(*opts.ReplaceSelectors)
	}
	if opts.AddSelectors != nil {
		out.Selectors = append(out.Selectors, splitSelectors(*opts.AddSelectors)...)
	}
	if opts.ReplaceSuffix != nil {
		out.Suffix = *opts.ReplaceSuffix
	}
	return out
}

func (p PathInfo) String() string {
	var b strings.Builder
	b.WriteString(p.ResourcePath)
	for _, selector := range p.Selectors {
		b.WriteByte('.')
		b.WriteString(selector)
	}
	if p.Extension != "" {
		b.WriteByte('.')
		b.WriteString(p.Extension)
	}
	b.WriteString(p.Suffix)
	return b.String()
}

func splitSelectors(raw string) []string {
	var out []string
	for _, selector := range strings.Split(raw, ".") {
		if trimmed := strings.TrimSpace(selector); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
