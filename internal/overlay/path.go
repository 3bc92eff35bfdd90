// SPDX-License-Identifier: MIT

package overlay

import "strings"

// SplitVirtual normalizes a virtual path into its segments. Both separator
// styles are accepted, empty segments and trailing separators are dropped.
// Case is preserved, matching happens on folded segments.
func SplitVirtual(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// fold maps a segment to its case-insensitive comparison form.
func fold(s string) string {
	return strings.ToLower(s)
}

// joinTarget appends path segments to a real target path, keeping the
// separator style the target already uses. A backslash-only target stays in
// backslash style so redirects into foreign path schemes survive verbatim.
func joinTarget(target string, segments []string) string {
	if len(segments) == 0 {
		return target
	}

	sep := "/"
	if strings.ContainsRune(target, '\\') && !strings.ContainsRune(target, '/') {
		sep = `\`
	}

	return strings.TrimRight(target, `/\`) + sep + strings.Join(segments, sep)
}
