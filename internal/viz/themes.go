package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the player's color scheme.
type Theme struct {
	Name    string
	Canvas  lipgloss.Color
	Title   lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Graph   lipgloss.Color
	Border  lipgloss.Color
	Paused  lipgloss.Color
	Running lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:    "classic",
		Canvas:  lipgloss.Color("#e0e0e0"),
		Title:   lipgloss.Color("86"),
		Label:   lipgloss.Color("245"),
		Value:   lipgloss.Color("252"),
		Graph:   lipgloss.Color("49"),
		Border:  lipgloss.Color("240"),
		Paused:  lipgloss.Color("#ffaa00"),
		Running: lipgloss.Color("#00ff88"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Canvas:  lipgloss.Color("#00ff00"),
		Title:   lipgloss.Color("#88ff88"),
		Label:   lipgloss.Color("#00aa00"),
		Value:   lipgloss.Color("#00ff00"),
		Graph:   lipgloss.Color("#00cc00"),
		Border:  lipgloss.Color("#005500"),
		Paused:  lipgloss.Color("#ffff00"),
		Running: lipgloss.Color("#88ff88"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Canvas:  lipgloss.Color("#e0f0ff"),
		Title:   lipgloss.Color("#00a8cc"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Graph:   lipgloss.Color("#0077be"),
		Border:  lipgloss.Color("#4488aa"),
		Paused:  lipgloss.Color("#ffcc00"),
		Running: lipgloss.Color("#00ff88"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Canvas:  lipgloss.Color("#fff5f5"),
		Title:   lipgloss.Color("#ff6b6b"),
		Label:   lipgloss.Color("#8b6b8c"),
		Value:   lipgloss.Color("#feca57"),
		Graph:   lipgloss.Color("#ff9ff3"),
		Border:  lipgloss.Color("#8b6b8c"),
		Paused:  lipgloss.Color("#ffc048"),
		Running: lipgloss.Color("#5fd068"),
	}

	Themes = []Theme{
		ThemeClassic,
		ThemeRetro,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns the named theme, or the first one when the name is
// unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme cycles through Themes.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
