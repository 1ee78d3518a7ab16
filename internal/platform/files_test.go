package platform

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	return path
}

func TestRemovePartialDownloads(t *testing.T) {
	dir := t.TempDir()

	touch(t, dir, "Some Title clip123.mp4-1080p.mp4")
	touch(t, dir, "clip123.mp4.part")
	touch(t, dir, "clip123.mp4-audio.mp3")
	touch(t, dir, "clip123.mp4.txt")       // unknown extension
	touch(t, dir, "other456.mp4-720p.mp4") // unrelated URL
	touch(t, dir, "clip12.mp4-720p.webm")  // fragment does not match
	if err := os.Mkdir(filepath.Join(dir, "clip123.mp4.mkv"), 0755); err != nil {
		t.Fatal(err)
	}

	removed, err := RemovePartialDownloads(dir, "clip123.mp4")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	names := make([]string, 0, len(removed))
	for _, p := range removed {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	expected := []string{"Some Title clip123.mp4-1080p.mp4", "clip123.mp4-audio.mp3", "clip123.mp4.part"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v removed, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %s, got %s", expected[i], names[i])
		}
	}

	for _, keep := range []string{"clip123.mp4.txt", "other456.mp4-720p.mp4", "clip12.mp4-720p.webm", "clip123.mp4.mkv"} {
		if _, err := os.Stat(filepath.Join(dir, keep)); err != nil {
			t.Errorf("Expected %s to be kept: %v", keep, err)
		}
	}
}

func TestRemovePartialDownloads_EmptyFragment(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "video-720p.mp4")

	removed, err := RemovePartialDownloads(dir, "")
	if err != nil || len(removed) != 0 {
		t.Errorf("Expected nothing removed, got %v, %v", removed, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "video-720p.mp4")); err != nil {
		t.Errorf("File should be kept: %v", err)
	}
}

func TestRemovePartialDownloads_MissingDir(t *testing.T) {
	_, err := RemovePartialDownloads(filepath.Join(t.TempDir(), "missing"), "clip")
	if err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestIsPartialExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"a.mp4", true},
		{"a.MKV", true},
		{"a.webm.part", true},
		{"a.ytdl", true},
		{"a.flac", true},
		{"a.txt", false},
		{"noext", false},
	}

	for _, test := range tests {
		if got := IsPartialExtension(test.name); got != test.expected {
			t.Errorf("IsPartialExtension(%s) = %v, expected %v", test.name, got, test.expected)
		}
	}
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()
	existing := touch(t, dir, "song-audio only.mp3")

	if got := ResolveOutputPath(existing, "mp3"); got != existing {
		t.Errorf("Expected existing path, got %s", got)
	}

	reported := filepath.Join(dir, "song-audio only.webm")
	if got := ResolveOutputPath(reported, "MP3"); got != existing {
		t.Errorf("Expected %s, got %s", existing, got)
	}

	missing := filepath.Join(dir, "nothing.webm")
	if got := ResolveOutputPath(missing, "mp3"); got != missing {
		t.Errorf("Expected %s unchanged, got %s", missing, got)
	}

	if got := ResolveOutputPath("", "mp3"); got != "" {
		t.Errorf("Expected empty path, got %s", got)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	err := OpenFileInManager(filepath.Join(t.TempDir(), "nonexistent.txt"))
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestReadMediaTitle_NotAudio(t *testing.T) {
	path := touch(t, t.TempDir(), "notes.mp3")
	if _, err := ReadMediaTitle(path); err == nil {
		t.Error("Expected error for file without tags")
	}
	if _, err := ReadMediaTitle(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Expected error for missing file")
	}
}
