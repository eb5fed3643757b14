package utils

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes configPath into config. Keys the struct does not
// know about are logged, not rejected.
func LoadTOMLFile(configPath string, config any) error {
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", configPath, err)
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", configPath, undecoded)
	}
	return nil
}

// ParseTOMLWithRecovery decodes configPath into a generic table so callers
// can pick out whatever values are well typed.
func ParseTOMLWithRecovery(configPath string) (map[string]any, error) {
	table := make(map[string]any)
	if _, err := toml.DecodeFile(configPath, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return table, nil
}

// Extract returns data[key] when it holds a T.
func Extract[T any](data map[string]any, key string) (T, bool) {
	val, ok := data[key].(T)
	return val, ok
}

// ExtractSection returns the [name] table of a parsed document.
func ExtractSection(data map[string]any, name string) (map[string]any, bool) {
	return Extract[map[string]any](data, name)
}

// ExtractInt returns a TOML integer as an int.
func ExtractInt(data map[string]any, key string) (int, bool) {
	val, ok := Extract[int64](data, key)
	return int(val), ok
}
