// Package config loads the recordbus configuration.
//
// Configuration is layered: Default() first, then each file added to a Loader
// (JSON or YAML, chosen by extension), then RECORDBUS_* environment overrides.
// Every file layer is checked against an embedded JSON schema before it is
// merged, and the merged result is checked by Config.Validate.
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.yaml")
//	loader.AddLayer("config/site.json") // overrides base
//	cfg, err := loader.Load()
//
// Durations accept time.ParseDuration strings, a day suffix ("14d") or integer
// nanoseconds.
//
// Environment overrides:
//
//	RECORDBUS_NODE_NAME, RECORDBUS_NODE_MODE
//	RECORDBUS_NATS_URL, RECORDBUS_NATS_SUBJECT_PREFIX
//	RECORDBUS_METRICS_ENABLED, RECORDBUS_METRICS_PORT
//	RECORDBUS_MONITOR_ENABLED, RECORDBUS_MONITOR_PORT
//	RECORDBUS_RECORD_PATH
//
// Files may live anywhere, relative or absolute, but must be regular files of
// at most 10 MiB with nesting no deeper than 32 levels in either format.
//
// SafeConfig holds the live configuration of a running process. Get returns
// deep copies and Update swaps in a validated replacement, which is how
// recordbus applies a SIGHUP reload.
package config
