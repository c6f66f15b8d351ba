// Package strings holds helpers for comma-separated settings and email lists.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated value into trimmed, non-empty, unique
// entries in their original order. It returns nil when nothing remains.
func SplitList(raw string) []string {
	return Compact(strings.Split(raw, ","), strings.TrimSpace)
}

// NormalizeEmails trims and lowercases emails, dropping blanks and repeats.
func NormalizeEmails(emails []string) []string {
	return Compact(emails, NormalizeEmail)
}

// NormalizeEmail is the canonical form used to compare caller emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Compact applies norm to each value and keeps the first occurrence of every
// non-empty result.
func Compact(values []string, norm func(string) string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
