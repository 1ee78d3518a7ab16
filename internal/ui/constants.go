package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconWarning  = "⚠️"
)

// Text fragments
const (
	ProgressLabelFormat = "%d%%"
	Ellipsis            = "..."
)

// Layout sizing
const (
	WindowWidth     float32 = 550
	WindowHeight    float32 = 350
	NoAudioMinWidth float32 = 105
	SettingsWidth   float32 = 500
	SettingsHeight  float32 = 400
)

// ErrorDisplayLength is how many characters of an engine error the form shows
// before the ellipsis. The full message stays in the error dialog and the log.
const ErrorDisplayLength = 30

// Timing
const (
	// ResultDisplayTime is how long the outcome text stays on the progress bar
	ResultDisplayTime = 3 * time.Second
	PlaylistTimeout   = 2 * time.Minute
)
