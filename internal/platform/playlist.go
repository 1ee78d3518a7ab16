package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/hbdl/hb-downloader/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Playlist naming
const (
	DefaultPlaylistName     = "Unknown Playlist"
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
	MinPrefixLength         = 10
	PlaylistSuffix          = " Playlist"
)

// PlaylistExpander resolves playlist URLs into the URLs of their videos
type PlaylistExpander struct {
	timeout time.Duration
}

// NewPlaylistExpander creates a new playlist expander
func NewPlaylistExpander() *PlaylistExpander {
	return &PlaylistExpander{
		timeout: DefaultParseTimeout,
	}
}

// SetTimeout sets the timeout for expansion
func (p *PlaylistExpander) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// IsPlaylistURL reports whether the URL carries a playlist ID
func IsPlaylistURL(url string) bool {
	return extractPlaylistID(url) != ""
}

// Expand fetches all items of the playlist referenced by url
func (p *PlaylistExpander) Expand(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID := extractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.PlaylistEntry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}

	return &model.Playlist{
		ID:      playlistID,
		URL:     url,
		Title:   playlistTitle(entries),
		Entries: entries,
	}, nil
}

// extractPlaylistID extracts the playlist ID from the list= query parameter
func extractPlaylistID(url string) string {
	_, after, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, ParamSeparator)
	return id
}

// playlistTitle derives a title from the common prefix of the first two entries
func playlistTitle(entries []model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistName
	}
	if len(entries) > 1 {
		prefix := commonPrefix(entries[0].Title, entries[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

func commonPrefix(s1, s2 string) string {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:n]
}
