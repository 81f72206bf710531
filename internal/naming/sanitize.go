package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxFilenameBytes is the common filesystem limit for one path component.
const MaxFilenameBytes = 255

// fallbackName replaces names that sanitize to nothing.
const fallbackName = "Unknown"

var replacer = strings.NewReplacer(
	":", "-",
	"/", " ",
	"\\", " ",
	"<", "",
	">", "",
	"\"", "",
	"|", "",
	"?", "",
	"*", "",
	"\x00", "",
)

// multiSpace matches runs of whitespace.
var multiSpace = regexp.MustCompile(`\s+`)

// multiDot matches multiple consecutive dots.
var multiDot = regexp.MustCompile(`\.{2,}`)

// SanitizeName makes one path component safe on common filesystems.
// It never returns an empty string.
func SanitizeName(name string) string {
	name = replacer.Replace(name)
	name = multiDot.ReplaceAllString(name, ".")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")
	name = truncateUTF8(name, MaxFilenameBytes)
	name = strings.TrimRight(name, " .")
	if name == "" {
		return fallbackName
	}
	return name
}

// SanitizeFilename sanitizes stem and appends ext, truncating the stem so
// the result fits in MaxFilenameBytes.
func SanitizeFilename(stem, ext string) string {
	stem = replacer.Replace(stem)
	stem = multiDot.ReplaceAllString(stem, ".")
	stem = multiSpace.ReplaceAllString(stem, " ")
	stem = strings.Trim(stem, " .")
	if stem == "" {
		stem = fallbackName
	}
	stem = truncateUTF8(stem, MaxFilenameBytes-len(ext))
	stem = strings.TrimRight(stem, " .")
	if stem == "" {
		stem = fallbackName
	}
	return stem + ext
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ValidatePath ensures the path is within the expected root directory.
// Returns ErrPathTraversal if the path would escape the root.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	prefix := cleanRoot
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if cleanPath != cleanRoot && !strings.HasPrefix(cleanPath, prefix) {
		return ErrPathTraversal
	}
	return nil
}
