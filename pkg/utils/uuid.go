package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	dashRuns     = regexp.MustCompile("-+")
)

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug appends a short random suffix to a slug
func UniqueSlug(s string) string {
	base := Slugify(s)
	suffix := strings.ToLower(uuid.New().String()[:6])
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
