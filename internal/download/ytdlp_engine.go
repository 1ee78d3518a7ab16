package download

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// DefaultProgressInterval is how often yt-dlp progress is forwarded to the hook
const DefaultProgressInterval = 500 * time.Millisecond

// YTDLPEngine runs downloads through the yt-dlp executable
type YTDLPEngine struct {
	progressInterval time.Duration
}

// NewYTDLPEngine creates a yt-dlp backed engine
func NewYTDLPEngine() *YTDLPEngine {
	return &YTDLPEngine{progressInterval: DefaultProgressInterval}
}

// SetProgressInterval sets how often progress updates are reported
func (e *YTDLPEngine) SetProgressInterval(interval time.Duration) {
	if interval > 0 {
		e.progressInterval = interval
	}
}

// Download implements Engine. An error from the hook cancels the yt-dlp process
// and is returned instead of the process error.
func (e *YTDLPEngine) Download(ctx context.Context, url string, opts Options, hook ProgressHook) (EngineResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dl := buildCommand(opts)

	var (
		mu       sync.Mutex
		abortErr error
	)
	dl.ProgressFunc(e.progressInterval, func(update ytdlp.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if abortErr != nil {
			return
		}
		if err := hook(statusFromUpdate(update)); err != nil {
			abortErr = err
			cancel()
		}
	})

	result, err := dl.Run(ctx, url)

	mu.Lock()
	aborted := abortErr
	mu.Unlock()

	if aborted != nil {
		return EngineResult{}, aborted
	}
	if err != nil {
		return EngineResult{}, err
	}
	return EngineResult{OutputPath: outputPath(result)}, nil
}

// buildCommand translates Options into yt-dlp flags
func buildCommand(opts Options) *ytdlp.Command {
	dl := ytdlp.New().
		NoPlaylist().
		Output(opts.OutputTemplate).
		Format(opts.Format)

	if opts.MergeOutputFormat != "" {
		dl.MergeOutputFormat(opts.MergeOutputFormat)
	}

	for _, pp := range opts.PostProcessors {
		if pp.Key != PostProcessorExtractAudio {
			continue
		}
		dl.ExtractAudio().AudioFormat(pp.PreferredCodec)
		if pp.PreferredQuality != "" {
			dl.AudioQuality(pp.PreferredQuality)
		}
	}

	return dl
}

// statusFromUpdate converts a yt-dlp progress update into an engine status record
func statusFromUpdate(update ytdlp.ProgressUpdate) EngineStatus {
	st := EngineStatus{State: string(update.Status)}
	if update.TotalBytes > 0 {
		percent := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		st.PercentStr = fmt.Sprintf("%.1f%%", percent)
	}
	return st
}

func outputPath(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 || info[0].Filename == nil {
		return ""
	}
	return *info[0].Filename
}
