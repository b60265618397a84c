package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings are the factory properties a host uses to select the engine:
// the names it answers to, the script extensions it handles and the script
// MIME types.
type Settings struct {
	Names      []string `yaml:"names"`
	Extensions []string `yaml:"extensions"`
	MimeTypes  []string `yaml:"mime_types"`
}

// DefaultSettings mirrors the stock factory registration.
func DefaultSettings() Settings {
	return Settings{
		Names:      []string{"pongo2", "django"},
		Extensions: []string{"tpl"},
		MimeTypes:  []string{"text/x-pongo2"},
	}
}

// LoadSettings decodes YAML settings. Keys missing from the document keep
// their defaults.
func LoadSettings(r io.Reader) (Settings, error) {
	settings := DefaultSettings()
	if r == nil {
		return settings, nil
	}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("engine: decode settings: %w", err)
	}
	settings = settings.normalized()
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// LoadSettingsFile reads settings from path.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("engine: open settings: %w", err)
	}
	defer f.Close()
	return LoadSettings(f)
}

// Validate reports settings a factory cannot be started with.
func (s Settings) Validate() error {
	if len(s.Names) == 0 {
		return errors.New("engine: at least one engine name is required")
	}
	if len(s.Extensions) == 0 {
		return errors.New("engine: at least one script extension is required")
	}
	for _, ext := range s.Extensions {
		if strings.ContainsAny(ext, "./") {
			return fmt.Errorf("engine: invalid script extension %q", ext)
		}
	}
	return nil
}

func (s Settings) normalized() Settings {
	return Settings{
		Names:      cleanList(s.Names, strings.TrimSpace),
		Extensions: cleanList(s.Extensions, normalizeExtension),
		MimeTypes:  cleanList(s.MimeTypes, strings.TrimSpace),
	}
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func cleanList(values []string, clean func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		cleaned := clean(value)
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
