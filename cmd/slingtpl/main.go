// Package main provides the slingtpl CLI: render repository resources with
// pongo2 scripts or serve them over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	slingtpl "github.com/goliatone/go-slingtpl"
	"github.com/goliatone/go-slingtpl/internal/host"
	"github.com/goliatone/go-slingtpl/pkg/directive"
	"github.com/goliatone/go-slingtpl/pkg/engine"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	content       string
	settings      string
	templates     string
	encoding      string
	logLevel      string
	failTransport bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "slingtpl",
		Short:         "Render content resources with pongo2 scripts",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.content, "content", "content.yaml", "YAML content repository")
	flags.StringVar(&opts.settings, "settings", "", "YAML engine settings (names, extensions, mime_types)")
	flags.StringVar(&opts.templates, "templates", "", "directory scripts may include or extend templates from")
	flags.StringVar(&opts.encoding, "encoding", engine.DefaultEncoding, "charset scripts are decoded from")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.failTransport, "fail-on-include-error", false, "fail renders when a nested include fails")

	cmd.AddCommand(newServeCmd(opts), newRenderCmd(opts))
	return cmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// buildHost loads the repository and settings and starts the engine stack.
// The returned stop function releases the stack.
func buildHost(opts *rootOptions, logger *slog.Logger) (*host.Host, func(), error) {
	repo, err := host.LoadRepositoryFile(opts.content)
	if err != nil {
		return nil, nil, err
	}

	settings := engine.DefaultSettings()
	if opts.settings != "" {
		settings, err = engine.LoadSettingsFile(opts.settings)
		if err != nil {
			return nil, nil, err
		}
	}

	policy := directive.TransportFailureIgnore
	if opts.failTransport {
		policy = directive.TransportFailureFail
	}
	configOptions := []engine.ConfigOption{engine.WithEncoding(opts.encoding)}
	if opts.templates != "" {
		configOptions = append(configOptions, engine.WithLoaderDir(opts.templates))
	}

	stack, err := slingtpl.New(settings,
		slingtpl.WithLogger(logger),
		slingtpl.WithTransportFailurePolicy(policy),
		slingtpl.WithConfiguration(configOptions...),
	)
	if err != nil {
		return nil, nil, err
	}

	h, err := host.New(repo, stack.Factory, host.WithLogger(logger))
	if err != nil {
		_ = stack.Close()
		return nil, nil, err
	}
	return h, func() { _ = stack.Close() }, nil
}
