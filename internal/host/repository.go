package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// Property names the host understands on content resources.
const (
	PropertyScript = "script"
	PropertyText   = "text"
	PropertyData   = "data"
)

// Node is the YAML form of one resource.
type Node struct {
	Path         string         `yaml:"path"`
	ResourceType string         `yaml:"resourceType"`
	Properties   map[string]any `yaml:"properties"`
}

type document struct {
	Resources []Node `yaml:"resources"`
}

// Resource is a node of the in-memory content tree.
type Resource struct {
	repo         *Repository
	path         string
	resourceType string
	properties   map[string]any
}

var _ sling.Resource = (*Resource)(nil)

func (r *Resource) Path() string                             { return r.path }
func (r *Resource) ResourceType() string                     { return r.resourceType }
func (r *Resource) ResourceResolver() sling.ResourceResolver { return r.repo }

// Name returns the last path segment.
func (r *Resource) Name() string {
	return sling.Name(r.path)
}

// Property returns the raw property value.
func (r *Resource) Property(name string) (any, bool) {
	value, ok := r.properties[name]
	return value, ok
}

// Text returns a string property.
func (r *Resource) Text(name string) (string, bool) {
	value, ok := r.properties[name].(string)
	return value, ok
}

// Data returns a binary property. YAML !!binary values decode to strings
// holding the raw bytes.
func (r *Resource) Data(name string) ([]byte, bool) {
	switch value := r.properties[name].(type) {
	case []byte:
		return value, true
	case string:
		return []byte(value), true
	default:
		return nil, false
	}
}

func (r *Resource) String() string {
	return "Resource, type=" + r.resourceType + ", path=" + r.path
}

// Repository is a read-only content tree keyed by absolute path.
type Repository struct {
	resources map[string]*Resource
}

var _ sling.ResourceResolver = (*Repository)(nil)

// NewRepository builds a repository from nodes. Paths must be absolute and
// normalized and may appear only once.
func NewRepository(nodes ...Node) (*Repository, error) {
	repo := &Repository{resources: make(map[string]*Resource, len(nodes))}
	for _, node := range nodes {
		path := strings.TrimSpace(node.Path)
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("host: resource path %q is not absolute", node.Path)
		}
		if normalized, ok := sling.Normalize(path); !ok || normalized != path {
			return nil, fmt.Errorf("host: resource path %q is not normalized", node.Path)
		}
		if _, dup := repo.resources[path]; dup {
			return nil, fmt.Errorf("host: duplicate resource %q", path)
		}
		repo.resources[path] = &Resource{
			repo:         repo,
			path:         path,
			resourceType: strings.TrimSpace(node.ResourceType),
			properties:   node.Properties,
		}
	}
	return repo, nil
}

// LoadRepository decodes a YAML document with a top-level resources list.
func LoadRepository(r io.Reader) (*Repository, error) {
	if r == nil {
		return nil, errors.New("host: repository reader is nil")
	}
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("host: decode repository: %w", err)
	}
	return NewRepository(doc.Resources...)
}

// LoadRepositoryFile reads a YAML repository from path.
func LoadRepositoryFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("host: open repository: %w", err)
	}
	defer f.Close()
	return LoadRepository(f)
}

// Resolve implements sling.ResourceResolver.
func (r *Repository) Resolve(path string) (sling.Resource, bool) {
	res, ok := r.Resource(path)
	if !ok {
		return nil, false
	}
	return res, true
}

// Resource returns the resource stored at path.
func (r *Repository) Resource(path string) (*Resource, bool) {
	if r == nil {
		return nil, false
	}
	res, ok := r.resources[path]
	return res, ok
}

// Parent returns the closest stored ancestor of path.
func (r *Repository) Parent(path string) (*Resource, bool) {
	for parent := sling.Parent(path); parent != ""; parent = sling.Parent(parent) {
		if res, ok := r.Resource(parent); ok {
			return res, true
		}
	}
	return nil, false
}

// Paths lists every stored path in lexical order.
func (r *Repository) Paths() []string {
	paths := make([]string, 0, len(r.resources))
	for path := range r.resources {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
