package engine

import (
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-slingtpl/pkg/models"
	"github.com/goliatone/go-slingtpl/pkg/scripting"
)

const (
	engineName   = "Sling Scripting pongo2 ScriptEngine"
	languageName = "pongo2"
)

// namespaces become template variables, so they must be identifiers
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Option customises a Factory.
type Option func(*Factory)

// WithLogger sets the factory logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRegistry sets the registry template models are tracked from.
func WithRegistry(registry *models.Registry) Option {
	return func(f *Factory) {
		if registry != nil {
			f.registry = registry
		}
	}
}

// WithDefaultConfiguration sets the options used to build the fallback
// Configuration on first use.
func WithDefaultConfiguration(options ...ConfigOption) Option {
	return func(f *Factory) {
		f.defaultOptions = append(f.defaultOptions, options...)
	}
}

// Factory creates Engines and holds the state they share.
type Factory struct {
	logger   *slog.Logger
	registry *models.Registry

	bound          atomic.Pointer[Configuration]
	defaultOnce    sync.Once
	defaultConfig  *Configuration
	defaultOptions []ConfigOption

	mu       sync.RWMutex
	settings Settings
	tracker  *models.Tracker
}

var _ scripting.EngineFactory = (*Factory)(nil)

// NewFactory constructs a stopped factory carrying DefaultSettings.
func NewFactory(options ...Option) *Factory {
	f := &Factory{
		logger:   slog.Default(),
		settings: DefaultSettings(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.registry == nil {
		f.registry = models.NewRegistry()
	}
	return f
}

// Start applies settings and begins tracking template-model providers.
func (f *Factory) Start(settings Settings) error {
	f.logger.Debug("start")
	settings = settings.normalized()
	if err := settings.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tracker != nil {
		return errors.New("engine: factory already started")
	}
	f.settings = settings
	f.tracker = f.registry.Track(f.modelChanged)
	return nil
}

// Reconfigure applies new settings to a running factory.
func (f *Factory) Reconfigure(settings Settings) error {
	f.logger.Debug("reconfigure")
	settings = settings.normalized()
	if err := settings.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tracker == nil {
		return errors.New("engine: factory is not started")
	}
	f.settings = settings
	return nil
}

// Stop closes the model tracker. Calling Stop on a stopped factory is a
// no-op.
func (f *Factory) Stop() {
	f.logger.Debug("stop")
	f.mu.Lock()
	tracker := f.tracker
	f.tracker = nil
	f.mu.Unlock()

	tracker.Close()
}

// Started reports whether the factory is running.
func (f *Factory) Started() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tracker != nil
}

// Registry returns the registry template models are tracked from.
func (f *Factory) Registry() *models.Registry {
	return f.registry
}

// BindConfiguration publishes cfg as the shared Configuration, replacing any
// previously bound one.
func (f *Factory) BindConfiguration(cfg *Configuration) {
	if cfg == nil {
		return
	}
	f.bound.Store(cfg)
	f.logger.Debug("configuration bound", "encoding", cfg.DefaultEncoding())
}

// UnbindConfiguration withdraws cfg. It does nothing when a different
// Configuration has been bound since.
func (f *Factory) UnbindConfiguration(cfg *Configuration) {
	if cfg == nil {
		return
	}
	if f.bound.CompareAndSwap(cfg, nil) {
		f.logger.Debug("configuration unbound")
	}
}

// Configuration returns the bound Configuration or the default one.
func (f *Factory) Configuration() *Configuration {
	if cfg := f.bound.Load(); cfg != nil {
		return cfg
	}
	return f.defaults()
}

func (f *Factory) defaults() *Configuration {
	f.defaultOnce.Do(func() {
		cfg, err := NewConfiguration(f.defaultOptions...)
		if err != nil {
			f.logger.Error("invalid default configuration, using built-in defaults", "error", err)
			cfg = MustConfiguration()
		}
		f.defaultConfig = cfg
	})
	return f.defaultConfig
}

// TemplateModels scans the tracked providers and groups their models by
// namespace and name. Providers are visited in ascending ranking so the
// highest ranking one wins a collision. The result is rebuilt on every call.
func (f *Factory) TemplateModels() map[string]map[string]any {
	f.mu.RLock()
	tracker := f.tracker
	f.mu.RUnlock()

	out := make(map[string]map[string]any)
	for _, provider := range tracker.Providers() {
		namespace, name := provider.Namespace(), provider.Name()
		if strings.TrimSpace(namespace) == "" || strings.TrimSpace(name) == "" {
			continue
		}
		if !identifierPattern.MatchString(namespace) {
			f.logger.Warn("skipping template model with invalid namespace", "namespace", namespace, "name", name)
			continue
		}
		group, ok := out[namespace]
		if !ok {
			group = make(map[string]any)
			out[namespace] = group
		}
		group[name] = provider.Model()
	}
	return out
}

// NewEngine returns a fresh Engine bound to f.
func (f *Factory) NewEngine() scripting.Engine {
	return &Engine{factory: f}
}

func (f *Factory) EngineName() string      { return engineName }
func (f *Factory) LanguageName() string    { return languageName }
func (f *Factory) LanguageVersion() string { return pongo2.Version }

func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.settings.Names)
}

func (f *Factory) Extensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.settings.Extensions)
}

func (f *Factory) MimeTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.settings.MimeTypes)
}

// Handles reports whether scripts with extension ext belong to this factory.
func (f *Factory) Handles(ext string) bool {
	ext = normalizeExtension(ext)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Contains(f.settings.Extensions, ext)
}

func (f *Factory) modelChanged(event models.Event) {
	f.logger.Debug("template model "+event.Kind.String(),
		"namespace", event.Provider.Namespace(),
		"name", event.Provider.Name(),
		"ranking", event.Provider.Ranking(),
	)
}
