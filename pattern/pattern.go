package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Wildcard is the pattern value that matches any present message value.
const Wildcard = "*"

// Pattern is a parsed dispatch pattern. The zero value matches every message;
// build non-trivial patterns with Parse.
type Pattern struct {
	pairs map[string]string
}

// Parse builds a Pattern from a comma-separated list of key:value pairs.
// Keys and values are trimmed of surrounding space. A repeated key keeps its
// last value. Empty keys, empty values, and pairs without a colon are
// rejected.
func Parse(s string) (Pattern, error) {
	p := Pattern{pairs: make(map[string]string)}
	if strings.TrimSpace(s) == "" {
		return p, nil
	}

	for _, raw := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(raw, ":")
		if !ok {
			return Pattern{}, fmt.Errorf("pattern: pair %q has no colon", strings.TrimSpace(raw))
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" {
			return Pattern{}, fmt.Errorf("pattern: pair %q has an empty key", strings.TrimSpace(raw))
		}
		if val == "" {
			return Pattern{}, fmt.Errorf("pattern: key %q has an empty value", key)
		}
		p.pairs[key] = val
	}
	return p, nil
}

// MustParse is Parse that panics on error. For patterns known at compile time.
func MustParse(s string) Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Canonical returns the stable form of the pattern: pairs sorted by key and
// joined with commas. Two patterns with equal pairs canonicalize identically
// regardless of the order they were written in.
func (p Pattern) Canonical() string {
	keys := make([]string, 0, len(p.pairs))
	for k := range p.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(p.pairs[k])
	}
	return b.String()
}

// Match reports whether msg satisfies the pattern: every pattern key must be
// present in msg, and its value must equal the pattern value unless the
// pattern value is the wildcard. Message values are coerced to strings, so
// numeric and boolean fields compare against their textual form.
func (p Pattern) Match(msg map[string]any) bool {
	for k, want := range p.pairs {
		got, ok := msg[k]
		if !ok {
			return false
		}
		if want == Wildcard {
			continue
		}
		if cast.ToString(got) != want {
			return false
		}
	}
	return true
}

// Specificity counts the literal (non-wildcard) pairs. The dispatcher ranks
// competing matches by specificity, highest first.
func (p Pattern) Specificity() int {
	n := 0
	for _, v := range p.pairs {
		if v != Wildcard {
			n++
		}
	}
	return n
}

// Len returns the number of pairs in the pattern.
func (p Pattern) Len() int { return len(p.pairs) }

// String returns the canonical form.
func (p Pattern) String() string { return p.Canonical() }
