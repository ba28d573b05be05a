package theme

import "strings"

// thBuiltinNames holds the lowercase names of the built-in themes.
var thBuiltinNames = map[string]bool{}

// thRegisterBuiltins registers all built-in themes in the registry.
func thRegisterBuiltins() {
	for _, t := range []Theme{
		thDefaultTheme(),
		thGruvboxTheme(),
		thNordTheme(),
	} {
		thBuiltinNames[strings.ToLower(t.Name)] = true
		Register(t)
	}
}

// IsBuiltin reports whether name belongs to a built-in theme.
func IsBuiltin(name string) bool {
	return thBuiltinNames[strings.ToLower(name)]
}

// thDefaultTheme returns the dark neutral theme with purple accent.
func thDefaultTheme() Theme {
	return Theme{
		Name:        "default",
		Foreground:  "#d4d4d4",
		Dim:         "#6b6b6b",
		Accent:      "#7C3AED",
		Border:      "#3e3e3e",
		Selected:    "#2d2d3a",
		StatusOK:    "#4ec970",
		StatusError: "#e06c75",
	}
}

// thGruvboxTheme returns the warm retro Gruvbox theme.
func thGruvboxTheme() Theme {
	return Theme{
		Name:        "gruvbox",
		Foreground:  "#ebdbb2",
		Dim:         "#928374",
		Accent:      "#fe8019",
		Border:      "#504945",
		Selected:    "#3c3836",
		StatusOK:    "#b8bb26",
		StatusError: "#fb4934",
	}
}

// thNordTheme returns the cool arctic Nord theme.
func thNordTheme() Theme {
	return Theme{
		Name:        "nord",
		Foreground:  "#d8dee9",
		Dim:         "#4c566a",
		Accent:      "#88c0d0",
		Border:      "#3b4252",
		Selected:    "#434c5e",
		StatusOK:    "#a3be8c",
		StatusError: "#bf616a",
	}
}
