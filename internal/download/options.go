package download

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hbdl/hb-downloader/internal/model"
)

// Output naming and format selector building blocks
const (
	OutputTemplateName = "%(title)s-%(resolution)s.%(ext)s"

	SelectorBestVideo   = "bestvideo"
	SelectorBestAudio   = "bestaudio"
	SelectorFallback    = "best"
	SelectorMergeOp     = "+"
	SelectorAlternateOp = "/"

	PostProcessorExtractAudio = "FFmpegExtractAudio"
)

// Quality labels with special meaning
const (
	QualityBest       = "best"
	QualityBestPT     = "melhor"
	QualityLegacy2K   = "2k"
	Legacy2KMaxHeight = 1440
	BitrateUnitSuffix = "k"
)

// PostProcessor is an instruction to transcode the fetched stream after download
type PostProcessor struct {
	Key              string
	PreferredCodec   string
	PreferredQuality string
}

// Options is the engine configuration derived from a request. Never mutated after BuildOptions.
type Options struct {
	OutputTemplate    string
	Format            string
	PostProcessors    []PostProcessor
	MergeOutputFormat string
}

// BuildOptions maps a request to engine options. It is pure and deterministic.
func BuildOptions(req model.Request, downloadDir string) (Options, error) {
	if strings.TrimSpace(req.URL) == "" {
		return Options{}, &ConfigurationError{Field: "url", Value: req.URL, Reason: "must not be empty"}
	}

	opts := Options{
		OutputTemplate: filepath.Join(downloadDir, OutputTemplateName),
	}

	target := strings.ToLower(strings.TrimSpace(req.Format))
	quality := strings.ToLower(strings.TrimSpace(req.Quality))

	switch req.Kind {
	case model.MediaKindAudio:
		if !slices.Contains(model.AudioFormats, target) {
			return Options{}, &ConfigurationError{Field: "audio format", Value: req.Format, Reason: "unsupported codec"}
		}
		bitrate, err := audioBitrate(quality)
		if err != nil {
			return Options{}, err
		}
		opts.Format = SelectorBestAudio
		opts.PostProcessors = []PostProcessor{{
			Key:              PostProcessorExtractAudio,
			PreferredCodec:   target,
			PreferredQuality: bitrate,
		}}

	case model.MediaKindVideo:
		if !slices.Contains(model.VideoFormats, target) {
			return Options{}, &ConfigurationError{Field: "video format", Value: req.Format, Reason: "unsupported container"}
		}
		video, err := videoSelector(quality)
		if err != nil {
			return Options{}, err
		}
		if req.NoAudio {
			opts.Format = video
		} else {
			opts.Format = video + SelectorMergeOp + SelectorBestAudio + SelectorAlternateOp + SelectorFallback
		}
		opts.MergeOutputFormat = target

	default:
		return Options{}, &ConfigurationError{Field: "media kind", Value: string(req.Kind), Reason: "must be video or audio"}
	}

	return opts, nil
}

// videoSelector returns the video half of the format selector for a quality label
func videoSelector(quality string) (string, error) {
	switch {
	case quality == QualityBest || quality == QualityBestPT:
		return SelectorBestVideo, nil
	case quality == QualityLegacy2K:
		return heightCapped(Legacy2KMaxHeight), nil
	case strings.HasSuffix(quality, "p"):
		height, err := strconv.Atoi(strings.TrimSuffix(quality, "p"))
		if err != nil || height <= 0 {
			break
		}
		return heightCapped(height), nil
	}
	return "", &ConfigurationError{Field: "video quality", Value: quality, Reason: "expected best, 2k or <height>p"}
}

func heightCapped(height int) string {
	return fmt.Sprintf("%s[height<=%d]", SelectorBestVideo, height)
}

// audioBitrate strips the trailing unit from labels such as "320k"
func audioBitrate(quality string) (string, error) {
	bitrate := strings.TrimSuffix(quality, BitrateUnitSuffix)
	if n, err := strconv.Atoi(bitrate); err != nil || n <= 0 {
		return "", &ConfigurationError{Field: "audio quality", Value: quality, Reason: "expected a bitrate such as 192k"}
	}
	return bitrate, nil
}
