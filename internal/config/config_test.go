package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARPIX_CONFIG_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProjectPrefix != DefaultProjectPrefix {
		t.Fatalf("unexpected prefix: %s", cfg.ProjectPrefix)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("unexpected api url: %s", cfg.APIURL)
	}
	if cfg.DBPath == "" || cfg.MediaRoot == "" {
		t.Fatal("expected cwd-derived db path and media root")
	}
	if cfg.Gallery.MaxUploadBytes != DefaultGalleryMaxUploadBytes {
		t.Fatalf("unexpected upload limit: %d", cfg.Gallery.MaxUploadBytes)
	}
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARPIX_CONFIG_DIR", dir)

	content := "api_url = \"http://127.0.0.1:9999\"\n\n[gallery]\nmax_upload_bytes = 1024\nallowed_formats = [\"image/png\", \"IMAGE/PNG\", \"image/gif\"]\n"
	if err := os.WriteFile(filepath.Join(dir, ".charpix.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9999" {
		t.Fatalf("unexpected api url: %s", cfg.APIURL)
	}
	if cfg.Gallery.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected upload limit: %d", cfg.Gallery.MaxUploadBytes)
	}
	// Duplicates collapse and values are lowercased and sorted.
	if len(cfg.Gallery.AllowedFormats) != 2 {
		t.Fatalf("unexpected formats: %v", cfg.Gallery.AllowedFormats)
	}
	if cfg.Gallery.AllowedFormats[0] != "image/gif" || cfg.Gallery.AllowedFormats[1] != "image/png" {
		t.Fatalf("unexpected formats: %v", cfg.Gallery.AllowedFormats)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARPIX_CONFIG_DIR", dir)

	content := "api_url = \"http://127.0.0.1:9999\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".charpix.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHARPIX_API_URL", "http://127.0.0.1:8888")
	t.Setenv("CHARPIX_DB", "/tmp/override.db")
	t.Setenv("CHARPIX_GALLERY_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("CHARPIX_GALLERY_ALLOWED_FORMATS", "image/png,image/webp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8888" {
		t.Fatalf("env should win: %s", cfg.APIURL)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.Gallery.MaxUploadBytes != 2048 {
		t.Fatalf("unexpected upload limit: %d", cfg.Gallery.MaxUploadBytes)
	}
	if len(cfg.Gallery.AllowedFormats) != 2 {
		t.Fatalf("unexpected formats: %v", cfg.Gallery.AllowedFormats)
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARPIX_CONFIG_DIR", dir)
	path := filepath.Join(dir, ".charpix.toml")

	if err := SetKey(path, "api_url", "http://127.0.0.1:7777"); err != nil {
		t.Fatalf("set api_url: %v", err)
	}
	if err := SetKey(path, "gallery.max_upload_bytes", "4096"); err != nil {
		t.Fatalf("set nested key: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:7777" {
		t.Fatalf("unexpected api url: %s", cfg.APIURL)
	}
	if cfg.Gallery.MaxUploadBytes != 4096 {
		t.Fatalf("unexpected upload limit: %d", cfg.Gallery.MaxUploadBytes)
	}
}

func TestSetKey_RejectsUnknownKeysAndBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".charpix.toml")

	if err := SetKey(path, "nonsense", "x"); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if err := SetKey(path, "gallery.max_upload_bytes", "-5"); err == nil {
		t.Fatal("expected negative limit to be rejected")
	}
	if err := SetKey(path, "gallery.upload_concurrency", "abc"); err == nil {
		t.Fatal("expected non-numeric concurrency to be rejected")
	}
}

func TestConfigGet_CoversAllAllowedKeys(t *testing.T) {
	cfg := Default()
	for _, key := range AllowedKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
	}
}
