package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Palette
var (
	colorBackground = color.RGBA{R: 43, G: 43, B: 43, A: 255}    // #2b2b2b
	colorForeground = color.RGBA{R: 255, G: 255, B: 255, A: 255} // white text
	colorPrimary    = color.RGBA{R: 52, G: 152, B: 219, A: 255}  // #3498db
	colorHover      = color.RGBA{R: 41, G: 128, B: 185, A: 255}  // #2980b9
	colorPressed    = color.RGBA{R: 26, G: 82, B: 118, A: 255}   // #1a5276
	colorInput      = color.NRGBA{R: 255, G: 255, B: 255, A: 13} // 5% white
	colorBorder     = color.RGBA{R: 156, G: 156, B: 156, A: 255} // #9c9c9c
	colorMuted      = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// DarkTheme is the application theme. It always renders the dark variant.
type DarkTheme struct{}

// NewDarkTheme creates the application theme
func NewDarkTheme() fyne.Theme {
	return &DarkTheme{}
}

// Color returns theme colors
func (t *DarkTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return colorBackground
	case theme.ColorNameForeground:
		return colorForeground
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorPrimary
	case theme.ColorNameHover:
		return colorHover
	case theme.ColorNamePressed:
		return colorPressed
	case theme.ColorNameInputBackground, theme.ColorNameButton:
		return colorInput
	case theme.ColorNameInputBorder:
		return colorBorder
	case theme.ColorNamePlaceHolder, theme.ColorNameDisabled:
		return colorMuted
	}

	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

// Font returns theme fonts
func (t *DarkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *DarkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with rounded inputs
func (t *DarkTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInputRadius:
		return 10
	case theme.SizeNameSelectionRadius:
		return 6
	case theme.SizeNameInputBorder:
		return 1
	}

	return theme.DefaultTheme().Size(name)
}
