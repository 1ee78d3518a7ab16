package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIcon = "hb-downloader.png"
)

// LoadAppIcon loads the window icon from the working directory.
// The icon is optional; callers ignore the error.
func LoadAppIcon() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
