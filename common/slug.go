package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxSlugLength leaves room for a "-NN" suffix inside a 64-char column.
const MaxSlugLength = 60

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases input and collapses every run of non-alphanumerics to a
// single hyphen. When nothing usable is left, fallback is slugified instead.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

// WithSuffix returns the n-th alternative for a taken slug ("acme" -> "acme-2").
func WithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
