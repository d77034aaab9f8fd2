package utils

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// CleanText strips any markup from user supplied free text (technical
// opinions, narratives, rejection reasons) and trims surrounding space.
func CleanText(s string) string {
	policyOnce.Do(func() { policy = bluemonday.StrictPolicy() })
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// IsBlank reports whether s has no visible content once cleaned.
func IsBlank(s string) bool {
	return CleanText(s) == ""
}
