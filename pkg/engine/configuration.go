package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/goliatone/go-slingtpl/pkg/directive"
)

// DefaultEncoding is the charset used to decode scripts unless configured.
const DefaultEncoding = "UTF-8"

// ConfigOption customises a Configuration.
type ConfigOption func(*configOptions)

type configOptions struct {
	name          string
	encoding      string
	compatibility string
	baseDir       string
	templates     fs.FS
	globals       map[string]any
}

// WithSetName names the underlying pongo2 template set.
func WithSetName(name string) ConfigOption {
	return func(o *configOptions) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			o.name = trimmed
		}
	}
}

// WithEncoding sets the charset scripts are decoded from.
func WithEncoding(name string) ConfigOption {
	return func(o *configOptions) {
		o.encoding = strings.TrimSpace(name)
	}
}

// WithCompatibility records the engine version the configuration targets.
// It is a label only and does not change parsing or execution.
func WithCompatibility(version string) ConfigOption {
	return func(o *configOptions) {
		if trimmed := strings.TrimSpace(version); trimmed != "" {
			o.compatibility = trimmed
		}
	}
}

// WithLoaderDir lets templates {% include %} and {% extends %} files below
// dir.
func WithLoaderDir(dir string) ConfigOption {
	return func(o *configOptions) {
		o.baseDir = strings.TrimSpace(dir)
	}
}

// WithLoaderFS lets templates {% include %} and {% extends %} files from
// files.
func WithLoaderFS(files fs.FS) ConfigOption {
	return func(o *configOptions) {
		o.templates = files
	}
}

// WithGlobals seeds values visible to every template parsed with the
// configuration.
func WithGlobals(globals map[string]any) ConfigOption {
	return func(o *configOptions) {
		if len(globals) == 0 {
			return
		}
		if o.globals == nil {
			o.globals = make(map[string]any, len(globals))
		}
		for key, value := range globals {
			o.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Configuration is the shared, immutable engine configuration: the pongo2
// template set used for parsing and the charset scripts are decoded from.
type Configuration struct {
	set           *pongo2.TemplateSet
	encodingName  string
	encoding      encoding.Encoding
	compatibility string
}

// NewConfiguration builds a Configuration. It also registers the call tag
// and the default filters with pongo2.
func NewConfiguration(options ...ConfigOption) (*Configuration, error) {
	opts := &configOptions{
		name:          "slingtpl",
		encoding:      DefaultEncoding,
		compatibility: pongo2.Version,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(opts)
	}

	if err := directive.RegisterTags(); err != nil {
		return nil, fmt.Errorf("engine: register tags: %w", err)
	}
	registerDefaultFilters()

	if opts.encoding == "" {
		opts.encoding = DefaultEncoding
	}
	enc, err := htmlindex.Get(opts.encoding)
	if err != nil {
		return nil, fmt.Errorf("engine: unsupported encoding %q: %w", opts.encoding, err)
	}

	var loaders []pongo2.TemplateLoader
	if opts.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(opts.baseDir)
		if err != nil {
			return nil, fmt.Errorf("engine: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if opts.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(opts.templates))
	}
	if len(loaders) == 0 {
		loaders = append(loaders, noLoader{})
	}

	set := pongo2.NewSet(opts.name, loaders...)
	if len(opts.globals) > 0 {
		if set.Globals == nil {
			set.Globals = make(pongo2.Context, len(opts.globals))
		}
		set.Globals.Update(pongo2.Context(opts.globals))
	}

	return &Configuration{
		set:           set,
		encodingName:  opts.encoding,
		encoding:      enc,
		compatibility: opts.compatibility,
	}, nil
}

// MustConfiguration is NewConfiguration that panics on error.
func MustConfiguration(options ...ConfigOption) *Configuration {
	cfg, err := NewConfiguration(options...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultEncoding returns the charset scripts are decoded from.
func (c *Configuration) DefaultEncoding() string {
	return c.encodingName
}

// Compatibility returns the engine version label set by WithCompatibility.
func (c *Configuration) Compatibility() string {
	return c.compatibility
}

// TemplateSet exposes the underlying pongo2 set.
func (c *Configuration) TemplateSet() *pongo2.TemplateSet {
	return c.set
}

// Parse decodes and parses a script.
func (c *Configuration) Parse(script io.Reader) (*pongo2.Template, error) {
	if script == nil {
		return nil, errors.New("engine: script reader is nil")
	}
	src, err := io.ReadAll(transform.NewReader(script, c.encoding.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("engine: read script: %w", err)
	}
	return c.set.FromBytes(src)
}

var errLoadingDisabled = errors.New("engine: template loading is not configured")

// noLoader backs template sets that have no loader configured.
type noLoader struct{}

func (noLoader) Abs(base, name string) string {
	return name
}

func (noLoader) Get(path string) (io.Reader, error) {
	return nil, fmt.Errorf("%w: %s", errLoadingDisabled, path)
}
