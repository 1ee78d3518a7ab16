package model

import (
	"fmt"
	"strings"
)

// MediaKind selects between a video download and an audio-only extraction
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// String returns the string representation of MediaKind
func (k MediaKind) String() string {
	return string(k)
}

// ParseMediaKind accepts the English and Portuguese labels shown by the front ends
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video", "vídeo":
		return MediaKindVideo, nil
	case "audio", "áudio":
		return MediaKindAudio, nil
	}
	return "", fmt.Errorf("unknown media kind: %q", s)
}

// Quality and container labels offered to the user
var (
	VideoQualities = []string{"best", "1440p", "1080p", "720p", "480p", "360p", "144p"}
	AudioQualities = []string{"128k", "192k", "256k", "320k"}
	VideoFormats   = []string{"mp4", "mkv", "webm"}
	AudioFormats   = []string{"mp3", "flac", "aac", "m4a", "opus", "ogg", "wav"}
)

// QualitiesFor returns the quality labels offered for a media kind
func QualitiesFor(kind MediaKind) []string {
	if kind == MediaKindAudio {
		return AudioQualities
	}
	return VideoQualities
}

// FormatsFor returns the target containers/codecs offered for a media kind
func FormatsFor(kind MediaKind) []string {
	if kind == MediaKindAudio {
		return AudioFormats
	}
	return VideoFormats
}

// Request is an immutable description of what the user asked to download.
// NoAudio only applies to video requests.
type Request struct {
	URL     string
	Kind    MediaKind
	Quality string
	Format  string
	NoAudio bool
}

// URLFragment returns the trailing path segment of the source URL
func (r Request) URLFragment() string {
	u := strings.TrimSpace(r.URL)
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
