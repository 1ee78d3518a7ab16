package platform

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// ReadMediaTitle returns the title tag of an audio file, prefixed by the artist when present
func ReadMediaTitle(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return "", fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	title := strings.TrimSpace(meta.Title())
	if title == "" {
		return "", fmt.Errorf("no title tag in %s", path)
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		return artist + " - " + title, nil
	}
	return title, nil
}
