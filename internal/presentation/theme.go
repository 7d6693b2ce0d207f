package presentation

import (
	"fmt"
	"strings"
)

// Theme is the colour scheme of the rendered card.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// DefaultTheme is the scheme shown on start.
const DefaultTheme = Dark

// ParseTheme accepts "dark" or "light" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Palette holds ANSI SGR sequences for one theme.
type Palette struct {
	Title  string
	Text   string
	Muted  string
	Error  string
	Accent string
	Reset  string
}

var palettes = map[Theme]Palette{
	Dark: {
		Title:  "\x1b[1;97m",
		Text:   "\x1b[97m",
		Muted:  "\x1b[37m",
		Error:  "\x1b[91m",
		Accent: "\x1b[93m",
		Reset:  "\x1b[0m",
	},
	Light: {
		Title:  "\x1b[1;30m",
		Text:   "\x1b[30m",
		Muted:  "\x1b[90m",
		Error:  "\x1b[31m",
		Accent: "\x1b[34m",
		Reset:  "\x1b[0m",
	},
}

// Palette returns the colours of t. Plain output gets an empty palette.
func (t Theme) Palette(color bool) Palette {
	if !color {
		return Palette{}
	}
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[DefaultTheme]
}
