package sync

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxNameLength caps sanitized filenames to stay comfortably inside
// platform path-length limits.
const maxNameLength = 150

// fallbackName replaces display names that sanitize to nothing.
const fallbackName = "unnamed_file"

// unsafeChars maps every character that is invalid in a filename on at
// least one supported platform to an underscore.
var unsafeChars = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeName maps an arbitrary remote display name to a safe local
// filename: NFC-normalized, reserved characters replaced with underscores,
// trailing dots and surrounding whitespace stripped, length capped while
// preserving the extension. The result is deterministic and never empty.
func SanitizeName(raw string) string {
	name := norm.NFC.String(raw)
	name = unsafeChars.Replace(name)
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ". ")

	if name == "" {
		return fallbackName
	}

	return truncateName(name, maxNameLength)
}

// truncateName caps name to limit runes, keeping the extension when one is
// present and short enough to be worth keeping.
func truncateName(name string, limit int) string {
	if utf8.RuneCountInString(name) <= limit {
		return name
	}

	ext := filepath.Ext(name)
	if utf8.RuneCountInString(ext) >= limit {
		return string([]rune(name)[:limit])
	}

	base := strings.TrimSuffix(name, ext)
	keep := limit - utf8.RuneCountInString(ext)

	return string([]rune(base)[:keep]) + ext
}

// suffixedName inserts " (n)" before the extension, producing the
// disambiguation sequence "name (2).ext", "name (3).ext", ...
func suffixedName(name string, n int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}

// CollectionDirName builds the per-collection subdirectory name,
// "<id> - <name>" passed through the sanitizer.
func CollectionDirName(id int64, name string) string {
	return SanitizeName(fmt.Sprintf("%d - %s", id, name))
}
