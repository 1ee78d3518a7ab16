package config

import (
	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/model"
	"github.com/hbdl/hb-downloader/internal/platform"
)

// Preferences is the key/value store settings are persisted in.
// fyne.Preferences satisfies it, and so does FileStore.
type Preferences interface {
	String(key string) string
	SetString(key string, value string)
	Int(key string) int
	SetInt(key string, value int)
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
}

// Settings keys
const (
	KeyDownloadDir        = "download_directory"
	KeyMaxParallel        = "max_parallel_downloads"
	KeyMediaKind          = "media_kind"
	KeyVideoQuality       = "video_quality"
	KeyVideoFormat        = "video_format"
	KeyAudioQuality       = "audio_quality"
	KeyAudioFormat        = "audio_format"
	KeyNoAudio            = "no_audio"
	KeyLanguage           = "app_language"
	KeyLoggingEnabled     = "logging_enabled"
	KeyLogPath            = "log_path"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultMaxParallel        = 1
	DefaultMediaKind          = model.MediaKindVideo
	DefaultVideoQuality       = "best"
	DefaultVideoFormat        = "mp4"
	DefaultAudioQuality       = "192k"
	DefaultAudioFormat        = "mp3"
	DefaultLanguage           = "system"
	DefaultLoggingEnabled     = false
	DefaultAutoRevealComplete = false

	fallbackDownloadDir = "/tmp/downloads"
	minParallel         = 1
	maxParallel         = 10
)

// Settings manages application configuration
type Settings struct {
	prefs Preferences
}

// NewSettings creates a new settings manager
func NewSettings(prefs Preferences) *Settings {
	return &Settings{prefs: prefs}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.prefs.String(KeyDownloadDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = fallbackDownloadDir
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.prefs.SetString(KeyDownloadDir, dir)
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.prefs.Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	if count < minParallel {
		count = minParallel
	}
	if count > maxParallel {
		count = maxParallel
	}
	s.prefs.SetInt(KeyMaxParallel, count)
}

// GetMediaKind returns the last selected media kind
func (s *Settings) GetMediaKind() model.MediaKind {
	kind, err := model.ParseMediaKind(s.prefs.String(KeyMediaKind))
	if err != nil {
		return DefaultMediaKind
	}
	return kind
}

// SetMediaKind sets the media kind
func (s *Settings) SetMediaKind(kind model.MediaKind) {
	s.prefs.SetString(KeyMediaKind, kind.String())
}

// GetQuality returns the remembered quality for a media kind
func (s *Settings) GetQuality(kind model.MediaKind) string {
	if kind == model.MediaKindAudio {
		return s.stringOr(KeyAudioQuality, DefaultAudioQuality)
	}
	return s.stringOr(KeyVideoQuality, DefaultVideoQuality)
}

// SetQuality remembers the quality for a media kind
func (s *Settings) SetQuality(kind model.MediaKind, quality string) {
	if kind == model.MediaKindAudio {
		s.prefs.SetString(KeyAudioQuality, quality)
		return
	}
	s.prefs.SetString(KeyVideoQuality, quality)
}

// GetFormat returns the remembered container or codec for a media kind
func (s *Settings) GetFormat(kind model.MediaKind) string {
	if kind == model.MediaKindAudio {
		return s.stringOr(KeyAudioFormat, DefaultAudioFormat)
	}
	return s.stringOr(KeyVideoFormat, DefaultVideoFormat)
}

// SetFormat remembers the container or codec for a media kind
func (s *Settings) SetFormat(kind model.MediaKind, format string) {
	if kind == model.MediaKindAudio {
		s.prefs.SetString(KeyAudioFormat, format)
		return
	}
	s.prefs.SetString(KeyVideoFormat, format)
}

// GetNoAudio returns whether video downloads skip the audio track
func (s *Settings) GetNoAudio() bool {
	return s.prefs.BoolWithFallback(KeyNoAudio, false)
}

// SetNoAudio sets whether video downloads skip the audio track
func (s *Settings) SetNoAudio(noAudio bool) {
	s.prefs.SetBool(KeyNoAudio, noAudio)
}

// Request builds a download request for url from the remembered selections
func (s *Settings) Request(url string) model.Request {
	kind := s.GetMediaKind()
	return model.Request{
		URL:     url,
		Kind:    kind,
		Quality: s.GetQuality(kind),
		Format:  s.GetFormat(kind),
		NoAudio: kind == model.MediaKindVideo && s.GetNoAudio(),
	}
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.prefs.String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.prefs.SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"pt":     "Português",
	}
}

// GetLoggingEnabled returns whether the log file is written
func (s *Settings) GetLoggingEnabled() bool {
	return s.prefs.BoolWithFallback(KeyLoggingEnabled, DefaultLoggingEnabled)
}

// SetLoggingEnabled enables or disables the log file
func (s *Settings) SetLoggingEnabled(enabled bool) {
	s.prefs.SetBool(KeyLoggingEnabled, enabled)
}

// GetLogPath returns the log file path
func (s *Settings) GetLogPath() string {
	return s.stringOr(KeyLogPath, logging.DefaultLogPath)
}

// SetLogPath sets the log file path
func (s *Settings) SetLogPath(path string) {
	s.prefs.SetString(KeyLogPath, path)
}

// LoggingOptions returns logger options from the logging settings
func (s *Settings) LoggingOptions() logging.Options {
	return logging.Options{
		Enabled: s.GetLoggingEnabled(),
		Path:    s.GetLogPath(),
	}
}

// GetAutoRevealOnComplete returns whether to auto-reveal completed downloads
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.prefs.BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to auto-reveal completed downloads
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.prefs.SetBool(KeyAutoRevealComplete, autoReveal)
}

func (s *Settings) stringOr(key, fallback string) string {
	if v := s.prefs.String(key); v != "" {
		return v
	}
	return fallback
}
