package search

import "strings"

// parseBool implements the lenient boolean query-param grammar spec §6.1
// defines: "true|t|yes|y|1" (case-insensitive) is true, anything else false.
// This is deliberately distinct from pkg/config.GetEnvBool, which accepts a
// different literal set and is for environment variables, not query params.
func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// parseBoolDefault applies parseBool, falling back to def when raw is absent.
func parseBoolDefault(values map[string][]string, key string, def bool) bool {
	vals, ok := values[key]
	if !ok || len(vals) == 0 {
		return def
	}
	return parseBool(vals[0])
}
