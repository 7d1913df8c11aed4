package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultProjectPrefix = "ch"
	DefaultAPIURL        = "http://127.0.0.1:7433"
	DefaultDBFileName    = ".charpix.db"
	DefaultMediaDirName  = ".charpix-media"
	DefaultLogLevel      = "info"

	DefaultGalleryMaxUploadBytes    int64 = 5 * 1024 * 1024
	DefaultGalleryMultipartMemory   int64 = 1 * 1024 * 1024
	DefaultGalleryUploadConcurrency       = 4

	configDirEnvKey = "CHARPIX_CONFIG_DIR"

	apiURLEnvKey         = "CHARPIX_API_URL"
	dbPathEnvKey         = "CHARPIX_DB"
	mediaRootEnvKey      = "CHARPIX_MEDIA_ROOT"
	maxUploadBytesEnvKey = "CHARPIX_GALLERY_MAX_UPLOAD_BYTES"
	allowedFormatsEnvKey = "CHARPIX_GALLERY_ALLOWED_FORMATS"
)

// GalleryConfig defines runtime configuration for gallery uploads.
type GalleryConfig struct {
	MaxUploadBytes     int64    `toml:"max_upload_bytes"`
	MultipartMaxMemory int64    `toml:"multipart_max_memory"`
	AllowedFormats     []string `toml:"allowed_formats"`
	UploadConcurrency  int      `toml:"upload_concurrency"`
}

// Config defines runtime configuration for charpix.
type Config struct {
	ProjectPrefix string        `toml:"project_prefix"`
	APIURL        string        `toml:"api_url"`
	DBPath        string        `toml:"db_path"`
	MediaRoot     string        `toml:"media_root"`
	PublicBaseURL string        `toml:"public_base_url"`
	LogLevel      string        `toml:"log_level"`
	Gallery       GalleryConfig `toml:"gallery"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		ProjectPrefix: DefaultProjectPrefix,
		APIURL:        DefaultAPIURL,
		DBPath:        "",
		MediaRoot:     "",
		PublicBaseURL: "",
		LogLevel:      DefaultLogLevel,
		Gallery: GalleryConfig{
			MaxUploadBytes:     DefaultGalleryMaxUploadBytes,
			MultipartMaxMemory: DefaultGalleryMultipartMemory,
			AllowedFormats:     nil,
			UploadConcurrency:  DefaultGalleryUploadConcurrency,
		},
	}
}

var allowedKeys = []string{
	"project_prefix",
	"api_url",
	"db_path",
	"media_root",
	"public_base_url",
	"log_level",
	"gallery.max_upload_bytes",
	"gallery.multipart_max_memory",
	"gallery.allowed_formats",
	"gallery.upload_concurrency",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "project_prefix":
		return c.ProjectPrefix, nil
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "media_root":
		return c.MediaRoot, nil
	case "public_base_url":
		return c.PublicBaseURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "gallery.max_upload_bytes":
		return strconv.FormatInt(c.Gallery.MaxUploadBytes, 10), nil
	case "gallery.multipart_max_memory":
		return strconv.FormatInt(c.Gallery.MultipartMaxMemory, 10), nil
	case "gallery.allowed_formats":
		return strings.Join(c.Gallery.AllowedFormats, ","), nil
	case "gallery.upload_concurrency":
		return strconv.Itoa(c.Gallery.UploadConcurrency), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".charpix.toml"), nil
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if loadErr := loadFileIfExists(path, &cfg); loadErr != nil {
			return nil, loadErr
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
		if cfg.MediaRoot == "" {
			cfg.MediaRoot = filepath.Join(cwd, DefaultMediaDirName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if mediaRoot := os.Getenv(mediaRootEnvKey); mediaRoot != "" {
		cfg.MediaRoot = mediaRoot
	}
	if raw := strings.TrimSpace(os.Getenv(maxUploadBytesEnvKey)); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			cfg.Gallery.MaxUploadBytes = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(allowedFormatsEnvKey)); raw != "" {
		cfg.Gallery.AllowedFormats = splitCSV(raw)
	}

	cfg.normalizeGalleryDefaults()

	return &cfg, nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ".charpix.toml"), true
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "gallery.max_upload_bytes", "gallery.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "gallery.upload_concurrency":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "gallery.allowed_formats":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalizeGalleryDefaults() {
	if c.Gallery.MaxUploadBytes <= 0 {
		c.Gallery.MaxUploadBytes = DefaultGalleryMaxUploadBytes
	}
	if c.Gallery.MultipartMaxMemory <= 0 {
		c.Gallery.MultipartMaxMemory = DefaultGalleryMultipartMemory
	}
	if c.Gallery.UploadConcurrency <= 0 {
		c.Gallery.UploadConcurrency = DefaultGalleryUploadConcurrency
	}
	c.Gallery.AllowedFormats = normalizeConfiguredFormats(c.Gallery.AllowedFormats)
}

func normalizeConfiguredFormats(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		normalized := strings.ToLower(strings.TrimSpace(raw))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
