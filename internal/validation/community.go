// Package validation holds input rules shared by the community services.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"hearth/internal/community"
)

const (
	MaxTitleLen   = 200
	MaxContentLen = 20000
	MaxTags       = 5
	MaxTagLen     = 32
	MaxNameLen    = 80
)

// RequiredText trims s and checks it is non-empty and at most max runes.
func RequiredText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", fmt.Errorf("%s too long (max %d characters)", field, max)
	}
	return s, nil
}

// OptionalText trims s and checks it is at most max runes.
func OptionalText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return "", fmt.Errorf("%s too long (max %d characters)", field, max)
	}
	return s, nil
}

// Tags canonicalizes tags, drops blanks and duplicates, and enforces count and length limits.
func Tags(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := community.NormalizeTerm(raw)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLen {
			return nil, fmt.Errorf("tag %q too long (max %d characters)", strings.TrimSpace(raw), MaxTagLen)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("at most %d tags are allowed", MaxTags)
	}
	return out, nil
}

// Terms trims and dedupes free-form skills or interests, keeping the caller's spelling.
func Terms(field string, terms []string, max int) ([]string, error) {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, raw := range terms {
		term := strings.TrimSpace(raw)
		key := community.NormalizeTerm(term)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	if len(out) > max {
		return nil, fmt.Errorf("at most %d %s are allowed", max, field)
	}
	return out, nil
}
