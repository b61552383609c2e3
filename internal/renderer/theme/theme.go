// Package theme maps highlight scopes to presentation classes.
//
// Scopes are dot-namespaced ("keyword.control.go"). Resolution tries the exact
// scope first, then each parent scope obtained by dropping the last segment
// ("keyword.control", then "keyword"). A scope with no mapped ancestor has no
// class and contributes no color.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hlsync/internal/renderer/core"
)

// Errors returned by theme loading.
var (
	// ErrUnsupportedFormat indicates a theme file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported theme format")

	// ErrEmptyTheme indicates a theme file without any class mappings.
	ErrEmptyTheme = errors.New("theme defines no classes")
)

// Theme maps scopes to class names.
type Theme struct {
	// Name is the display name of the theme.
	Name string `toml:"name" yaml:"name"`

	// Classes maps scope strings to class names.
	Classes map[string]string `toml:"classes" yaml:"classes"`
}

// Resolve returns the class for scope.
// The exact scope is checked first, then its parent scopes.
func (t *Theme) Resolve(scope string) (string, bool) {
	if t == nil || scope == "" {
		return "", false
	}
	for len(scope) > 0 {
		if class, ok := t.Classes[scope]; ok && class != "" {
			return class, true
		}
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return "", false
}

// DefaultTheme returns a class mapping for common parser scopes.
func DefaultTheme() *Theme {
	return &Theme{
		Name: "default",
		Classes: map[string]string{
			"comment":          "hl-comment",
			"string":           "hl-string",
			"string.escape":    "hl-escape",
			"constant":         "hl-constant",
			"constant.numeric": "hl-number",
			"number":           "hl-number",
			"keyword":          "hl-keyword",
			"operator":         "hl-operator",
			"entity.name":      "hl-name",
			"function":         "hl-function",
			"type":             "hl-type",
			"variable":         "hl-variable",
			"punctuation":      "hl-punctuation",
			core.ScopeError:    "hl-error",
			core.ScopeMissing:  "hl-missing",
		},
	}
}

// Load reads a theme from a TOML or YAML file, chosen by extension.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes theme data. The format is chosen from the extension of name.
func Parse(name string, data []byte) (*Theme, error) {
	var t Theme
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing theme %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing theme %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if len(t.Classes) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTheme)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return &t, nil
}
