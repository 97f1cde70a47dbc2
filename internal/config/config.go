package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pagekit.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"
)

// Config represents the complete pagekit.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// BaseURL is the mount base path of the deployment (default: "/").
	// Requests outside the base path are passed through untouched.
	BaseURL string `json:"baseUrl,omitempty"`

	// BaseAssets overrides the base path for asset URLs (e.g. a CDN origin).
	// Empty means assets use BaseURL.
	BaseAssets string `json:"baseAssets,omitempty"`

	// Pages is the path to the pages directory.
	Pages string `json:"pages,omitempty"`

	// IncludeAssetsImportedByServer also emits preload tags for assets
	// imported by server page files.
	IncludeAssetsImportedByServer bool `json:"includeAssetsImportedByServer,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains production build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains deployment configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables hot reload in development.
	HotReload bool `json:"hotReload,omitempty"`
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output,omitempty"`

	// Manifest is the path to the client asset manifest, relative to Output.
	Manifest string `json:"manifest,omitempty"`
}

// DeployConfig contains static deployment settings.
type DeployConfig struct {
	// S3Bucket is the target S3 bucket for `pagekit deploy`.
	S3Bucket string `json:"s3Bucket,omitempty"`

	// S3Prefix is the key prefix inside the bucket.
	S3Prefix string `json:"s3Prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		BaseURL: "/",
		Pages:   "pages",
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: true,
			Watch:     []string{"pages", "public"},
		},
		Build: BuildConfig{
			Output:   DefaultOutput,
			Manifest: "client/manifest.json",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for pagekit.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("P200").
				WithDetail("No pagekit.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("P201").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("P201").
			WithDetail("Failed to parse pagekit.json: " + err.Error()).
			WithSuggestion("Check that pagekit.json is valid JSON")
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find searches for pagekit.json starting in dir and walking upward.
func Find(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errors.New("P200").
				WithDetail("No pagekit.json found in the current directory or any parent directory")
		}
		dir = parent
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "/") {
		return errors.New("P201").
			WithDetail("baseUrl must start with \"/\", got " + c.BaseURL)
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("P201").
			WithDetail("dev.port must be between 0 and 65535")
	}
	return nil
}

// Path returns the file path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// Root returns the project root directory (the directory of pagekit.json).
func (c *Config) Root() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// OutputDir returns the absolute build output directory.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Build.Output) {
		return c.Build.Output
	}
	return filepath.Join(c.Root(), c.Build.Output)
}
