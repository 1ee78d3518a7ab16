package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFileStore_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	fs, err := LoadFileStore(path)
	if err != nil {
		t.Fatalf("Missing config should load as empty store: %v", err)
	}
	if fs.String(KeyDownloadDir) != "" || fs.Int(KeyMaxParallel) != 0 {
		t.Error("Empty store should return zero values")
	}
	if !fs.BoolWithFallback(KeyNoAudio, true) {
		t.Error("Unset bool should return the fallback")
	}
}

func TestFileStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	fs, err := LoadFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	settings := NewSettings(fs)
	settings.SetDownloadDirectory("/media/downloads")
	settings.SetMaxParallelDownloads(3)
	settings.SetNoAudio(true)
	settings.SetQuality("audio", "256k")

	if err := fs.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadFileStore(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	settings = NewSettings(reloaded)

	if dir := settings.GetDownloadDirectory(); dir != "/media/downloads" {
		t.Errorf("Expected download directory /media/downloads, got %s", dir)
	}
	if n := settings.GetMaxParallelDownloads(); n != 3 {
		t.Errorf("Expected max parallel 3, got %d", n)
	}
	if !settings.GetNoAudio() {
		t.Error("Expected no-audio to survive a reload")
	}
	if q := settings.GetQuality("audio"); q != "256k" {
		t.Errorf("Expected audio quality 256k, got %s", q)
	}
}

func TestLoadFileStore_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("strings: [not, a, map"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFileStore(path)
	if err == nil {
		t.Fatal("Expected parse error for malformed YAML")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("Error should name the config file, got %v", err)
	}
}

func TestDefaultFileStorePath(t *testing.T) {
	path, err := DefaultFileStorePath()
	if err != nil {
		t.Skipf("no user config directory: %v", err)
	}
	if filepath.Base(path) != ConfigFileName || filepath.Base(filepath.Dir(path)) != AppConfigDir {
		t.Errorf("Unexpected config path %s", path)
	}
}
