// Package slingtpl wires the pongo2 script engine, the template-model
// registry and the include directive into a ready-to-use stack.
package slingtpl

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-slingtpl/pkg/directive"
	"github.com/goliatone/go-slingtpl/pkg/engine"
	"github.com/goliatone/go-slingtpl/pkg/models"
)

// Settings aliases engine.Settings for callers of the root package.
type Settings = engine.Settings

// TransportFailurePolicy aliases directive.TransportFailurePolicy.
type TransportFailurePolicy = directive.TransportFailurePolicy

// Option customises New.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	registry      *models.Registry
	policy        TransportFailurePolicy
	configOptions []engine.ConfigOption
}

// WithLogger sets the logger shared by the factory and the include
// directive.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry tracks template models from an existing registry.
func WithRegistry(registry *models.Registry) Option {
	return func(c *config) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithTransportFailurePolicy sets how the include directive treats failed
// nested dispatches.
func WithTransportFailurePolicy(policy TransportFailurePolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithConfiguration binds a Configuration built from options to the factory.
func WithConfiguration(options ...engine.ConfigOption) Option {
	return func(c *config) {
		c.configOptions = append(c.configOptions, options...)
	}
}

// Stack is a started engine factory with the include directive registered as
// the sling.include template model.
type Stack struct {
	Factory *engine.Factory
	Include *directive.Include

	registration *models.Registration
}

// New starts a factory with settings and registers the include directive.
func New(settings Settings, options ...Option) (*Stack, error) {
	cfg := &config{logger: slog.Default(), policy: directive.TransportFailureIgnore}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = models.NewRegistry()
	}

	factory := engine.NewFactory(engine.WithLogger(cfg.logger), engine.WithRegistry(cfg.registry))
	if len(cfg.configOptions) > 0 {
		configuration, err := engine.NewConfiguration(cfg.configOptions...)
		if err != nil {
			return nil, fmt.Errorf("slingtpl: build configuration: %w", err)
		}
		factory.BindConfiguration(configuration)
	}
	if err := factory.Start(settings); err != nil {
		return nil, fmt.Errorf("slingtpl: start factory: %w", err)
	}

	include := directive.NewInclude(
		directive.WithLogger(cfg.logger),
		directive.WithTransportFailurePolicy(cfg.policy),
	)
	registration, err := cfg.registry.Register(include.Provider())
	if err != nil {
		factory.Stop()
		return nil, fmt.Errorf("slingtpl: register include: %w", err)
	}

	return &Stack{Factory: factory, Include: include, registration: registration}, nil
}

// Close unregisters the include directive and stops the factory.
func (s *Stack) Close() error {
	if s == nil || s.Factory == nil {
		return errors.New("slingtpl: stack is not initialised")
	}
	s.registration.Unregister()
	s.Factory.Stop()
	return nil
}
