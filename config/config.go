package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

// Modes the recordbus binary runs in
const (
	ModePublish = "publish"
	ModeConsume = "consume"
	ModeRecord  = "record"
	ModeReplay  = "replay"
)

// Config represents the complete application configuration
type Config struct {
	Version string        `json:"version" yaml:"version"`
	Node    NodeConfig    `json:"node" yaml:"node"`
	NATS    NATSConfig    `json:"nats" yaml:"nats"`
	Codec   CodecConfig   `json:"codec" yaml:"codec"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
	Publish PublishConfig `json:"publish" yaml:"publish"`
	Record  RecordConfig  `json:"record" yaml:"record"`
}

// NodeConfig identifies this process
type NodeConfig struct {
	Name string `json:"name" yaml:"name"`
	Mode string `json:"mode" yaml:"mode"`
	// Surface names the delivery surface in metrics and logs
	Surface string `json:"surface,omitempty" yaml:"surface,omitempty"`
	// Buffer is the handoff channel capacity between transport and surface
	Buffer int `json:"buffer,omitempty" yaml:"buffer,omitempty"`
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URL           string `json:"url" yaml:"url"`
	SubjectPrefix string `json:"subject_prefix,omitempty" yaml:"subject_prefix,omitempty"`
	MaxReconnects int    `json:"max_reconnects,omitempty" yaml:"max_reconnects,omitempty"`
	// ConnectAttempts bounds the initial connect, retried on transient failures
	ConnectAttempts int       `json:"connect_attempts,omitempty" yaml:"connect_attempts,omitempty"`
	ReconnectWait   Duration  `json:"reconnect_wait,omitempty" yaml:"reconnect_wait,omitempty"`
	Timeout         Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	DrainTimeout    Duration  `json:"drain_timeout,omitempty" yaml:"drain_timeout,omitempty"`
	TLS             TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig secures the NATS connection. The system CA bundle is always
// trusted; CAFiles are added to it. CertFile and KeyFile present a client
// certificate for mutual TLS.
type TLSConfig struct {
	Enabled            bool     `json:"enabled" yaml:"enabled"`
	CAFiles            []string `json:"ca_files,omitempty" yaml:"ca_files,omitempty"`
	CertFile           string   `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string   `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	ServerName         string   `json:"server_name,omitempty" yaml:"server_name,omitempty"`
	MinVersion         string   `json:"min_version,omitempty" yaml:"min_version,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"` // dev/test only
}

// CodecConfig bounds what the codec accepts
type CodecConfig struct {
	MaxTextLength uint32 `json:"max_text_length,omitempty" yaml:"max_text_length,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port,omitempty" yaml:"port,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MonitorConfig controls the websocket view of the delivery surface
type MonitorConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Port     int      `json:"port,omitempty" yaml:"port,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Interval Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// PublishConfig drives the demo producer
type PublishConfig struct {
	Interval Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
	// Count of rounds to publish, 0 for unlimited
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
}

// RecordConfig names the frame file used by record and replay modes
type RecordConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Node: NodeConfig{
			Name:    "recordbus",
			Mode:    ModeConsume,
			Surface: "default",
			Buffer:  64,
		},
		NATS: NATSConfig{
			URL:             "nats://localhost:4222",
			SubjectPrefix:   "records",
			MaxReconnects:   -1,
			ConnectAttempts: 5,
			ReconnectWait:   Duration(2 * time.Second),
			Timeout:         Duration(5 * time.Second),
			DrainTimeout:    Duration(30 * time.Second),
		},
		Codec: CodecConfig{
			MaxTextLength: 16 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Monitor: MonitorConfig{
			Enabled:  false,
			Port:     8081,
			Path:     "/ws",
			Interval: Duration(time.Second),
		},
		Publish: PublishConfig{
			Interval: Duration(100 * time.Millisecond),
		},
		Record: RecordConfig{
			Path: "records.rec",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.WrapInvalid(
			fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...),
			"Config", "Validate", "check configuration")
	}

	if c.Node.Name == "" {
		return invalid("node.name is required")
	}
	switch c.Node.Mode {
	case ModePublish, ModeConsume, ModeRecord, ModeReplay:
	default:
		return invalid("node.mode %q is not one of publish, consume, record, replay", c.Node.Mode)
	}
	if c.Node.Buffer < 0 {
		return invalid("node.buffer must not be negative")
	}
	if c.Publish.Interval <= 0 {
		return invalid("publish.interval must be positive")
	}
	if c.Publish.Count < 0 {
		return invalid("publish.count must not be negative")
	}

	if c.Node.Mode != ModeReplay && c.NATS.URL == "" {
		return invalid("nats.url is required")
	}
	if c.NATS.ConnectAttempts < 0 {
		return invalid("nats.connect_attempts must not be negative")
	}
	if t := c.NATS.TLS; t.Enabled {
		if (t.CertFile == "") != (t.KeyFile == "") {
			return invalid("nats.tls.cert_file and nats.tls.key_file must be set together")
		}
		switch t.MinVersion {
		case "", "1.2", "1.3":
		default:
			return invalid("nats.tls.min_version %q is not 1.2 or 1.3", t.MinVersion)
		}
	}
	if c.NATS.SubjectPrefix != "" && !isValidNATSSubjectPart(c.NATS.SubjectPrefix) {
		return invalid("nats.subject_prefix %q is not valid for NATS subjects", c.NATS.SubjectPrefix)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return invalid("metrics.port %d out of range", c.Metrics.Port)
	}
	if c.Monitor.Enabled {
		if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
			return invalid("monitor.port %d out of range", c.Monitor.Port)
		}
		if c.Monitor.Interval <= 0 {
			return invalid("monitor.interval must be positive")
		}
	}
	if c.Metrics.Enabled && c.Monitor.Enabled && c.Metrics.Port == c.Monitor.Port && c.Metrics.Port != 0 {
		return invalid("metrics and monitor cannot share port %d", c.Metrics.Port)
	}

	if (c.Node.Mode == ModeRecord || c.Node.Mode == ModeReplay) && c.Record.Path == "" {
		return invalid("record.path is required in %s mode", c.Node.Mode)
	}
	if c.Record.Path != "" {
		if err := checkPathShape("record.path", c.Record.Path); err != nil {
			return err
		}
	}
	return nil
}

// isValidNATSSubjectPart checks if a string is valid for use in NATS subjects.
// Valid characters are alphanumeric, dots, dashes, and underscores.
func isValidNATSSubjectPart(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String renders the configuration as indented JSON
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "SafeConfig", "Update", "check config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}

// Duration is a time.Duration that reads "250ms", "2s", "1d" or integer nanoseconds.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a duration string or integer nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDurationWithDays(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts a duration string or integer nanoseconds
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := parseDurationWithDays(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}

// parseDurationWithDays parses durations that may include days (e.g., "14d")
func parseDurationWithDays(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
