package download

import "context"

// Engine states understood by the progress hook; others are ignored
const (
	EngineStateDownloading = "downloading"
	EngineStateFinished    = "finished"
)

// EngineStatus is one status record reported by the engine during a transfer
type EngineStatus struct {
	State      string
	PercentStr string // e.g. "37.2%"
}

// ProgressHook receives engine status records. Returning a non-nil error
// (normally ErrAbort) asks the engine to abort the transfer.
type ProgressHook func(EngineStatus) error

// EngineResult describes what the engine produced
type EngineResult struct {
	OutputPath string
}

// Engine performs the network transfer and any local transcoding. Download blocks
// until done and returns an error on failure, including a hook-signalled abort.
type Engine interface {
	Download(ctx context.Context, url string, opts Options, hook ProgressHook) (EngineResult, error)
}
