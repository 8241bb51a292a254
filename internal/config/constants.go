package config

import (
	"path/filepath"
	"strings"
)

// AppName is the CLI name and the prefix of environment variables.
const AppName = "speclink"

// ForestFileExt is the preferred extension of module forest documents.
const ForestFileExt = ".yaml"

// ForestFileExtensions are all recognized module forest extensions.
var ForestFileExtensions = []string{".yaml", ".yml", ".json"}

// DiscardName is the anonymous binder. It is never recorded in a lookup table.
const DiscardName = "_"

// Settings file lookup
const (
	ConfigFileName = "speclink"
	ConfigFileType = "yaml"
	EnvPrefix      = "SPECLINK"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// HasForestExt reports whether path ends with a recognized forest extension.
func HasForestExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ForestFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TrimForestExt removes a recognized forest extension from name.
func TrimForestExt(name string) string {
	if HasForestExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
