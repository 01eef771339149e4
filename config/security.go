package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

// Limits applied to configuration input, whatever its format.
const (
	maxConfigSize = 10 << 20 // bytes per config file
	maxDepth      = 32       // nested objects and lists in one document
	maxEnvVarLen  = 4096     // bytes per RECORDBUS_* value
	maxPathLen    = 4096     // bytes per config or record path
)

func invalidInput(method, action, format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...),
		"Config", method, action)
}

// checkPathShape rejects paths that cannot name a file: empty, overlong or
// containing a NUL byte.
func checkPathShape(field, path string) error {
	switch {
	case path == "":
		return invalidInput("checkPath", "check "+field, "%s is empty", field)
	case len(path) > maxPathLen:
		return invalidInput("checkPath", "check "+field, "%s is %d bytes, limit %d", field, len(path), maxPathLen)
	case strings.ContainsRune(path, 0):
		return invalidInput("checkPath", "check "+field, "%s contains a NUL byte", field)
	}
	return nil
}

// CheckConfigPath reports whether path can name a configuration file. Like
// record.path it may be relative to the working directory or absolute, and
// may point outside the working directory; it must end in .json, .yaml or .yml.
func CheckConfigPath(path string) error {
	if err := checkPathShape("config path", path); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return invalidInput("CheckConfigPath", "check extension",
			"config file %s is neither JSON nor YAML", path)
	}
}

// safeReadFile reads a config file after checking its path, kind and size.
// A missing file keeps fs.ErrNotExist in its chain.
func safeReadFile(path string) ([]byte, error) {
	if err := CheckConfigPath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s: %w", errors.ErrConfigNotFound, path, err),
				"Config", "readFile", "stat config")
		}
		return nil, errors.WrapInvalid(err, "Config", "readFile", "stat config")
	}
	if !info.Mode().IsRegular() {
		return nil, invalidInput("readFile", "check file kind", "%s is not a regular file", path)
	}
	if info.Size() > maxConfigSize {
		return nil, invalidInput("readFile", "check file size",
			"%s is %d bytes, limit %d", path, info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "readFile", "read config")
	}
	return data, nil
}

// safeWriteFile writes a config file readable by its owner only.
func safeWriteFile(path string, data []byte) error {
	if err := CheckConfigPath(path); err != nil {
		return err
	}
	if len(data) > maxConfigSize {
		return invalidInput("writeFile", "check size", "encoded config is %d bytes, limit %d", len(data), maxConfigSize)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapTransient(err, "Config", "writeFile", "write config")
	}
	return nil
}

// validateEnvVar bounds an environment override and rejects NUL bytes.
func validateEnvVar(key, value string) error {
	if len(value) > maxEnvVarLen {
		return invalidInput("envOverride", "check "+key, "%s is %d bytes, limit %d", key, len(value), maxEnvVarLen)
	}
	if strings.ContainsRune(value, 0) {
		return invalidInput("envOverride", "check "+key, "%s contains a NUL byte", key)
	}
	return nil
}

// checkDepth walks a decoded JSON or YAML document and rejects nesting
// deeper than maxDepth. The top-level object counts as depth 1.
func checkDepth(path string, doc any) error {
	if d := depthOf(doc, 0); d > maxDepth {
		return invalidInput("checkDepth", "check nesting",
			"%s nesting depth exceeds %d", path, maxDepth)
	}
	return nil
}

// depthOf stops descending once the limit is passed.
func depthOf(v any, depth int) int {
	if depth > maxDepth {
		return depth
	}
	deepest := depth
	switch t := v.(type) {
	case map[string]any:
		deepest = depth + 1
		for _, child := range t {
			if d := depthOf(child, depth+1); d > deepest {
				deepest = d
			}
		}
	case []any:
		deepest = depth + 1
		for _, child := range t {
			if d := depthOf(child, depth+1); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}
