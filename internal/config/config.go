package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/chatpaint/paintd/internal/errors"
	"github.com/chatpaint/paintd/pkg/catalog"
)

const (
	// ConfigFileName is the name of the default configuration file.
	ConfigFileName = "paintd.json"

	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8080"

	// DefaultCatalogURL is the default paint catalog endpoint.
	DefaultCatalogURL = catalog.DefaultURL

	// DefaultUserIdentifier selects username-keyed user lists in the catalog.
	DefaultUserIdentifier = catalog.DefaultUserIdentifier

	// DefaultRefresh is the default full catalog refresh interval.
	DefaultRefresh = "10m"

	// DefaultTimeout is the default catalog request timeout.
	DefaultTimeout = "30s"

	// DefaultImageTimeout is the default paint image fetch timeout.
	DefaultImageTimeout = "20s"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "paintd"
)

// Catalog source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
	SourceS3   = "s3"
)

// Config represents the complete paintd configuration.
type Config struct {
	// Listen is the HTTP listen address for the query API.
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty" toml:"listen,omitempty"`

	// Catalog configures where the bulk paint catalog comes from.
	Catalog CatalogConfig `json:"catalog,omitempty" yaml:"catalog,omitempty" toml:"catalog,omitempty"`

	// Events configures the live event stream.
	Events EventsConfig `json:"events,omitempty" yaml:"events,omitempty" toml:"events,omitempty"`

	// Images configures paint image fetching.
	Images ImagesConfig `json:"images,omitempty" yaml:"images,omitempty" toml:"images,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty" toml:"log,omitempty"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CatalogConfig configures the catalog source.
type CatalogConfig struct {
	// Source is one of "http", "file" or "s3".
	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`

	// URL is the catalog endpoint for the http source.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// UserIdentifier selects how users are listed: "login", "twitch_id" or "object_id".
	UserIdentifier string `json:"userIdentifier,omitempty" yaml:"userIdentifier,omitempty" toml:"userIdentifier,omitempty"`

	// File is the snapshot path for the file source.
	File string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`

	// Watch re-merges the file source whenever the snapshot changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty"`

	// S3 locates the snapshot object for the s3 source.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty" toml:"s3,omitempty"`

	// Refresh is the full reload interval; "0" disables periodic reloads.
	Refresh string `json:"refresh,omitempty" yaml:"refresh,omitempty" toml:"refresh,omitempty"`

	// Timeout bounds a single catalog request.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// S3Config locates a catalog snapshot object.
type S3Config struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
}

// EventsConfig configures the live event stream.
type EventsConfig struct {
	// Enabled turns on the event stream client.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// URL is the WebSocket endpoint. It has no default and is required
	// when Enabled is set.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

// ImagesConfig configures paint image fetching.
type ImagesConfig struct {
	// Timeout bounds a single image fetch.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" toml:"namespace,omitempty"`

	// Labels are constant labels added to every metric.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty"`

	// HTTPBuckets overrides the request duration histogram buckets.
	HTTPBuckets []float64 `json:"httpBuckets,omitempty" yaml:"httpBuckets,omitempty" toml:"httpBuckets,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Listen: DefaultListen,
		Catalog: CatalogConfig{
			Source:         SourceHTTP,
			URL:            DefaultCatalogURL,
			UserIdentifier: DefaultUserIdentifier,
			Refresh:        DefaultRefresh,
			Timeout:        DefaultTimeout,
		},
		Images: ImagesConfig{
			Timeout: DefaultImageTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads paintd.json from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("P141").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("P140").Wrap(err)
	}

	cfg := New()
	if err := unmarshal(path, data, cfg); err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return errors.New("P143").WithDetail("Unsupported extension " + ext)
	}
	if err != nil {
		return errors.New("P140").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + strings.TrimPrefix(filepath.Ext(path), "."))
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Listen == "" {
		c.Listen = d.Listen
	}

	// Catalog
	if c.Catalog.Source == "" {
		c.Catalog.Source = d.Catalog.Source
	}
	if c.Catalog.URL == "" {
		c.Catalog.URL = d.Catalog.URL
	}
	if c.Catalog.UserIdentifier == "" {
		c.Catalog.UserIdentifier = d.Catalog.UserIdentifier
	}
	if c.Catalog.Refresh == "" {
		c.Catalog.Refresh = d.Catalog.Refresh
	}
	if c.Catalog.Timeout == "" {
		c.Catalog.Timeout = d.Catalog.Timeout
	}

	if c.Images.Timeout == "" {
		c.Images.Timeout = d.Images.Timeout
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return errors.New("P142").WithDetail("catalog.url is required for the http source")
		}
	case SourceFile:
		if c.Catalog.File == "" {
			return errors.New("P142").WithDetail("catalog.file is required for the file source")
		}
	case SourceS3:
		if c.Catalog.S3.Bucket == "" || c.Catalog.S3.Key == "" {
			return errors.New("P142").WithDetail("catalog.s3.bucket and catalog.s3.key are required for the s3 source")
		}
	default:
		return errors.New("P102").WithDetail("catalog.source = " + c.Catalog.Source)
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return errors.New("P142").
			WithDetail("events.url is required when events.enabled is set").
			WithSuggestion("Set events.url to a WebSocket endpoint speaking the dispatch/subscribe frame format")
	}

	switch c.Catalog.UserIdentifier {
	case "login", "twitch_id", "object_id":
	default:
		return errors.New("P142").
			WithDetail("catalog.userIdentifier must be login, twitch_id or object_id")
	}

	for name, v := range map[string]string{
		"catalog.refresh": c.Catalog.Refresh,
		"catalog.timeout": c.Catalog.Timeout,
		"images.timeout":  c.Images.Timeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return errors.New("P142").WithDetail(name + " is not a valid duration: " + v)
		}
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("P142").WithDetail("log.format must be text or json")
	}

	for i, b := range c.Metrics.HTTPBuckets {
		if i > 0 && b <= c.Metrics.HTTPBuckets[i-1] {
			return errors.New("P142").WithDetail("metrics.httpBuckets must be strictly increasing")
		}
	}
	return nil
}

// RefreshInterval returns the parsed catalog refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.Refresh)
	return d
}

// CatalogTimeout returns the parsed catalog request timeout.
func (c *Config) CatalogTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Catalog.Timeout)
	return d
}

// ImageTimeout returns the parsed image fetch timeout.
func (c *Config) ImageTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Images.Timeout)
	return d
}

// LogLevel returns the slog level for Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("P142").WithDetail("log.level must be debug, info, warn or error")
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
