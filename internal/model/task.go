package model

import (
	"strings"
	"time"
)

// DownloadTask is a display snapshot of a task managed by the download service
type DownloadTask struct {
	ID         string
	Request    Request
	Status     TaskStatus
	Percent    int       // 0 to 100
	Label      string    // last progress label reported by the engine
	LastError  string    // verbatim engine error if any
	OutputPath string    // path to downloaded file
	Title      string    // media title when known
	StartedAt  time.Time // when download started
	FinishedAt time.Time // when download finished
}

// Progress returns the completion ratio in the 0.0 to 1.0 range
func (dt *DownloadTask) Progress() float64 {
	return float64(dt.Percent) / 100.0
}

// Apply folds a task event into the snapshot
func (dt *DownloadTask) Apply(ev Event) {
	if ev.Progress != nil {
		dt.Percent = ev.Progress.Percent
		dt.Label = ev.Progress.Label
	}
	if ev.Outcome != nil {
		dt.Status = ev.Outcome.Status()
		dt.LastError = ev.Outcome.Message
		if ev.Outcome.OutputPath != "" {
			dt.OutputPath = ev.Outcome.OutputPath
		}
		if dt.Status == TaskStatusSucceeded {
			dt.Percent = 100
		}
		dt.FinishedAt = time.Now()
	}
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.OutputPath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return dt.Request.URL
}
