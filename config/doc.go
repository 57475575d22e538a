// Package config loads the process configuration: a YAML file with
// defaults filled in, then environment overrides on top for the
// settings that differ between deployments (connection strings,
// listen address, log level).
package config
