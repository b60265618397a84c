package sling

import "strings"

// Resource is a node of the host's content tree.
type Resource interface {
	Path() string
	ResourceType() string
	ResourceResolver() ResourceResolver
}

// ResourceResolver looks up resources by absolute path.
type ResourceResolver interface {
	// Resolve returns the resource at path. The boolean is false when no
	// resource exists there.
	Resolve(path string) (Resource, bool)
}

// SyntheticResource is a placeholder resource that does not exist in the
// content tree but carries a resource type so it can still be dispatched.
type SyntheticResource struct {
	resolver     ResourceResolver
	path         string
	resourceType string
}

var _ Resource = (*SyntheticResource)(nil)

// NewSyntheticResource builds a typed placeholder for path.
func NewSyntheticResource(resolver ResourceResolver, path, resourceType string) *SyntheticResource {
	return &SyntheticResource{
		resolver:     resolver,
		path:         path,
		resourceType: resourceType,
	}
}

func (r *SyntheticResource) Path() string                       { return r.path }
func (r *SyntheticResource) ResourceType() string               { return r.resourceType }
func (r *SyntheticResource) ResourceResolver() ResourceResolver { return r.resolver }

func (r *SyntheticResource) String() string {
	return "SyntheticResource, type=" + r.resourceType + ", path=" + r.path
}

// Normalize resolves "." and ".." segments and collapses repeated slashes.
// Absolute paths stay absolute and relative paths stay relative. The boolean
// is false when a ".." segment climbs above the first segment, in which case
// the path has no canonical form.
func Normalize(p string) (string, bool) {
	if p == "" {
		return "", true
	}
	absolute := strings.HasPrefix(p, "/")

	segments := make([]string, 0, strings.Count(p, "/")+1)
	for _, segment := range strings.Split(p, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", false
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	joined := strings.Join(segments, "/")
	if absolute {
		return "/" + joined, true
	}
	return joined, true
}

// Parent returns the parent path of an absolute path, or "" for the root.
func Parent(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	idx := strings.LastIndex(strings.TrimSuffix(p, "/"), "/")
	switch {
	case idx < 0:
		return ""
	case idx == 0:
		return "/"
	default:
		return p[:idx]
	}
}

// Name returns the last segment of p.
func Name(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
