package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

//go:embed schema.json
var schemaJSON []byte

// DefaultEnvPrefix prefixes environment overrides, e.g. RECORDBUS_NATS_URL.
const DefaultEnvPrefix = "RECORDBUS"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		validation: true,
		envPrefix:  DefaultEnvPrefix,
		lookupEnv:  os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables schema and semantic validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// SetEnvPrefix changes the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// Load reads a single file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	l := NewLoader()
	if path != "" {
		l.AddLayer(path)
	}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	base, err := toMap(Default())
	if err != nil {
		return nil, errors.WrapFatal(err, "Loader", "Load", "encode defaults")
	}

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, err
		}
		if l.validation {
			if err := ValidateDocument(raw); err != nil {
				return nil, errors.WrapInvalid(fmt.Errorf("%s: %w", path, err),
					"Loader", "Load", "schema validation")
			}
		}
		base = deepMergeMaps(base, raw)
	}

	cfg, err := fromMap(base)
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
			"Loader", "Load", "decode merged config")
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadRaw reads a JSON or YAML file into a generic map
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
				"Loader", "loadRaw", "parse YAML")
		}
		// Round-trip through JSON so the map holds JSON types only.
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
				"Loader", "loadRaw", "normalize YAML")
		}
		raw = nil
		if err := json.Unmarshal(normalized, &raw); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "loadRaw", "normalize YAML")
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
				"Loader", "loadRaw", "parse JSON")
		}
	}
	if err := checkDepth(path, raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// ValidateDocument checks a raw configuration document against the embedded
// JSON schema. Every violation is listed in the returned error.
func ValidateDocument(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	get := func(name string) (string, bool, error) {
		key := l.envPrefix + "_" + name
		val, ok := l.lookupEnv(key)
		if !ok || val == "" {
			return "", false, nil
		}
		if err := validateEnvVar(key, val); err != nil {
			return "", false, err
		}
		return val, true, nil
	}
	bad := func(name, val string, err error) error {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s_%s=%q: %v", errors.ErrInvalidConfig, l.envPrefix, name, val, err),
			"Loader", "applyEnvOverrides", "parse override")
	}

	strs := map[string]*string{
		"NODE_NAME":           &cfg.Node.Name,
		"NODE_MODE":           &cfg.Node.Mode,
		"NATS_URL":            &cfg.NATS.URL,
		"NATS_SUBJECT_PREFIX": &cfg.NATS.SubjectPrefix,
		"RECORD_PATH":         &cfg.Record.Path,
	}
	for name, dst := range strs {
		val, ok, err := get(name)
		if err != nil {
			return err
		}
		if ok {
			*dst = val
		}
	}

	ints := map[string]*int{
		"METRICS_PORT": &cfg.Metrics.Port,
		"MONITOR_PORT": &cfg.Monitor.Port,
	}
	for name, dst := range ints {
		val, ok, err := get(name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return bad(name, val, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"METRICS_ENABLED": &cfg.Metrics.Enabled,
		"MONITOR_ENABLED": &cfg.Monitor.Enabled,
	}
	for name, dst := range bools {
		val, ok, err := get(name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return bad(name, val, err)
		}
		*dst = b
	}
	return nil
}

// SaveToFile writes the configuration as JSON or YAML depending on the extension
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.WrapFatal(err, "Config", "SaveToFile", "encode config")
	}
	return safeWriteFile(path, data)
}
