// Package ui contains the Fyne desktop form. It turns the form into download
// requests for the download service and shows task updates on a single progress
// bar. Every UI mutation runs on the Fyne goroutine via fyne.Do.
package ui
