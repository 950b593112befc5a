package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// NormalizeFolderName converts a source folder name (or path) into the
// output folder name used by every stage. Returns "" for names without any
// token.
func NormalizeFolderName(name string) string {
	base := filepath.Base(filepath.Clean(strings.TrimSpace(name)))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	tokens := strings.FieldsFunc(base, isSeparator)
	// NoLower keeps the tail of each token as written so MovieShots12 is a
	// fixed point. Casers are stateful and must not be shared across goroutines.
	titleCaser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, token := range tokens {
		b.WriteString(titleCaser.String(token))
	}
	return b.String()
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
