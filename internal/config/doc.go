// Package config holds the runtime configuration of contentscale: defaults,
// validation, and the optional YAML configuration file with per-site
// settings and collaborator sections (validator, render, cache, database,
// archive, watch).
package config
