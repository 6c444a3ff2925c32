package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// DefaultPort is the default live server port.
	DefaultPort = 3000

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactor"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "reactor"

	// DefaultSnapshotDir is the default local snapshot directory.
	DefaultSnapshotDir = "snapshots"
)

// FileNames are the config file names Load looks for, in order.
var FileNames = []string{"reactor.json", "reactor.yaml", "reactor.yml"}

// Config represents a reactor project configuration.
type Config struct {
	// Name is the project name, used as the page title.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Dev contains live server configuration.
	Dev DevConfig `json:"dev" yaml:"dev"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Snapshot contains snapshot storage configuration.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// Debug enables debug logging.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains live server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// AllowedOrigins restricts WebSocket origins. Empty allows all.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the live server.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled records a span per component render.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Name is the tracer name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// SnapshotConfig selects where snapshots are stored. A non-empty Bucket
// selects S3, otherwise snapshots go to Dir.
type SnapshotConfig struct {
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// UsesS3 reports whether snapshots go to S3.
func (s SnapshotConfig) UsesS3() bool {
	return s.Bucket != ""
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeInvalidConfig).
		WithDetailf("no config file found in %s", dir).
		WithSuggestion("Create reactor.json or reactor.yaml, or run without a config to use defaults")
}

// LoadOrDefault is Load, falling back to New when dir has no config file.
// Parse and validation errors are still returned.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetailf("failed to parse %s: %v", filepath.Base(path), err).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "reactor"
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.Name == "" {
		c.Tracing.Name = DefaultTracerName
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
}

var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("dev.port %d must be between 0 and 65535", c.Dev.Port)
	}
	if !metricNamePattern.MatchString(c.Metrics.Namespace) {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("metrics.namespace %q is not a valid metric name prefix", c.Metrics.Namespace).
			WithSuggestion("Use letters, digits and underscores, starting with a letter")
	}
	if c.Snapshot.UsesS3() && c.Snapshot.Region == "" && c.Snapshot.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("snapshot.bucket is set but neither snapshot.region nor snapshot.endpoint is").
			WithSuggestion("Set snapshot.region, for example \"us-east-1\"")
	}
	return nil
}

// DevAddress returns the address string for the live server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the live server.
func (c *Config) DevURL() string {
	return fmt.Sprintf("http://%s", c.DevAddress())
}

// SnapshotPath returns the snapshot directory, resolved against the
// config file directory when relative.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
