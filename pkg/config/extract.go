package config

import "strings"

// ExtractPrefixed returns the entries of source whose key starts with prefix,
// with the prefix stripped from the key.
//
// The source map is never modified. An empty result is valid.
//
// Example:
//
//	ExtractPrefixed(map[string]string{"s3-endpoint": "http://x", "other": "y"}, "s3-")
//	// => map[string]string{"endpoint": "http://x"}
func ExtractPrefixed(source map[string]string, prefix string) map[string]string {
	result := make(map[string]string)
	for key, value := range source {
		if stripped, ok := strings.CutPrefix(key, prefix); ok {
			result[stripped] = value
		}
	}
	return result
}
