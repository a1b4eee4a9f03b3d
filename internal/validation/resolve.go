package validation

import (
	"os"
	"strings"
)

// TryValue looks key up in m, falling back to a case-insensitive match.
func TryValue(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// TryString is TryValue restricted to string values.
func TryString(m map[string]any, key string) (string, bool) {
	v, ok := TryValue(m, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// TryExistingFile returns the first candidate that names a regular file.
func TryExistingFile(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}
