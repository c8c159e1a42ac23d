package core

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTheme is used when neither the visitor nor the Site sheet picks a
// registered theme.
const DefaultTheme = "default"

// Theme is a stylesheet the visitor can switch to. Stylesheet is served
// under /static alongside the shared base stylesheet.
type Theme struct {
	Name       string
	Stylesheet string
}

var (
	themes   = make(map[string]Theme)
	themesMu sync.RWMutex
)

func init() {
	RegisterTheme(Theme{Name: "default", Stylesheet: "default.css"})
	RegisterTheme(Theme{Name: "dark", Stylesheet: "dark.css"})
}

// RegisterTheme adds a theme to the registry.
// Panics if a theme with the same name is already registered.
func RegisterTheme(t Theme) {
	themesMu.Lock()
	defer themesMu.Unlock()

	if _, exists := themes[t.Name]; exists {
		panic(fmt.Sprintf("theme already registered: %s", t.Name))
	}
	if t.Stylesheet == "" {
		t.Stylesheet = t.Name + ".css"
	}
	themes[t.Name] = t
}

// LookupTheme returns a theme by name.
func LookupTheme(name string) (Theme, bool) {
	themesMu.RLock()
	defer themesMu.RUnlock()

	t, ok := themes[name]
	return t, ok
}

// ThemeExists reports whether name is registered.
func ThemeExists(name string) bool {
	_, ok := LookupTheme(name)
	return ok
}

// Themes returns the registered theme names. The default theme comes first,
// the rest alphabetically.
func Themes() []string {
	themesMu.RLock()
	defer themesMu.RUnlock()

	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == DefaultTheme || names[j] == DefaultTheme {
			return names[i] == DefaultTheme
		}
		return names[i] < names[j]
	})
	return names
}

// ResolveTheme picks the active theme: the visitor's saved choice, then the
// Site sheet's template, then DefaultTheme. An unknown name falls back to
// DefaultTheme.
func ResolveTheme(saved, fromSite string) string {
	name := strings.TrimSpace(saved)
	if name == "" {
		name = strings.TrimSpace(fromSite)
	}
	if name == "" {
		return DefaultTheme
	}
	if !ThemeExists(name) {
		slog.Warn("theme not found, using default", "theme", name)
		return DefaultTheme
	}
	return name
}

// ThemeLabel is the display name of a theme in the theme selector.
func ThemeLabel(name string) string {
	// Casers are stateful; one per call.
	return cases.Title(language.Und).String(name)
}
