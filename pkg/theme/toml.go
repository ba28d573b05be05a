package theme

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// thTOMLTheme is the TOML-serializable representation of a Theme.
type thTOMLTheme struct {
	Name   string       `toml:"name"`
	Base   thTOMLBase   `toml:"base"`
	Table  thTOMLTable  `toml:"table"`
	Status thTOMLStatus `toml:"status"`
}

type thTOMLBase struct {
	Foreground string `toml:"foreground"`
	Dim        string `toml:"dim"`
	Accent     string `toml:"accent"`
}

type thTOMLTable struct {
	Border   string `toml:"border"`
	Selected string `toml:"selected"`
}

type thTOMLStatus struct {
	OK    string `toml:"ok"`
	Error string `toml:"error"`
}

var thHexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a TOML theme definition from raw bytes.
func LoadFromTOML(data []byte) (Theme, error) {
	var tt thTOMLTheme
	if err := toml.Unmarshal(data, &tt); err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}

	t := Theme{
		Name:        tt.Name,
		Foreground:  tt.Base.Foreground,
		Dim:         tt.Base.Dim,
		Accent:      tt.Base.Accent,
		Border:      tt.Table.Border,
		Selected:    tt.Table.Selected,
		StatusOK:    tt.Status.OK,
		StatusError: tt.Status.Error,
	}
	if err := thValidateTheme(t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Resolve returns the theme for a config value. A value ending in ".toml"
// is read as a theme file and registered; anything else is looked up by
// name. A theme file may not reuse a built-in theme name.
func Resolve(nameOrPath string) (Theme, error) {
	if !strings.HasSuffix(nameOrPath, ".toml") {
		return Get(nameOrPath), nil
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return Get("default"), fmt.Errorf("theme: %w", err)
	}
	t, err := LoadFromTOML(data)
	if err != nil {
		return Get("default"), err
	}
	if IsBuiltin(t.Name) {
		return Get("default"), fmt.Errorf("theme: %s: name %q is reserved for a built-in theme", nameOrPath, t.Name)
	}
	Register(t)
	return t, nil
}

// thValidateTheme checks that all required color fields are present and valid hex.
func thValidateTheme(t Theme) error {
	if t.Name == "" {
		return fmt.Errorf("theme: missing required field %q", "name")
	}
	colorFields := []struct {
		field, value string
	}{
		{"foreground", t.Foreground},
		{"dim", t.Dim},
		{"accent", t.Accent},
		{"border", t.Border},
		{"selected", t.Selected},
		{"status.ok", t.StatusOK},
		{"status.error", t.StatusError},
	}
	for _, f := range colorFields {
		if f.value == "" {
			return fmt.Errorf("theme: missing required field %q", f.field)
		}
		if !thHexColorRegex.MatchString(f.value) {
			return fmt.Errorf("theme: invalid hex color %q for field %q (expected #RRGGBB)", f.value, f.field)
		}
	}
	return nil
}
