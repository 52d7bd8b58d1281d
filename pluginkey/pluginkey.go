package pluginkey

import (
	"fmt"
	"strings"
)

// TagSep separates the plugin key from its tag in a composite registry key.
const TagSep = "$"

// Prefixes stripped from plugin names before normalization. Published
// plugins conventionally carry one of these; the registry key does not.
var stripPrefixes = []string{"dispatch-plugin-", "dispatchkit-"}

// Normalize converts a plugin name to its canonical registry key: lowercase,
// conventional prefixes stripped, runs of underscores and spaces collapsed
// to single hyphens. The result must be non-empty and contain only
// [a-z0-9-].
func Normalize(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range stripPrefixes {
		if strings.HasPrefix(key, p) {
			key = strings.TrimPrefix(key, p)
			break
		}
	}

	var b strings.Builder
	hyphen := false
	for _, r := range key {
		switch {
		case r == '_' || r == ' ' || r == '-':
			hyphen = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			return "", fmt.Errorf("pluginkey: name %q contains invalid character %q", name, r)
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("pluginkey: name %q normalizes to an empty key", name)
	}
	return b.String(), nil
}

// Join composes the registry key for a plugin instance. A tagged instance
// gets the plugin$tag form; an untagged one is keyed by the plugin alone.
func Join(plugin, tag string) string {
	if tag == "" {
		return plugin
	}
	return plugin + TagSep + tag
}

// Split is the inverse of Join. Keys without a separator return an empty tag.
func Split(key string) (plugin, tag string) {
	plugin, tag, _ = strings.Cut(key, TagSep)
	return plugin, tag
}
