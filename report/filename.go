package report

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultFilename is the fallback export filename.
const DefaultFilename = "document.pdf"

var (
	utf8FilenamePattern  = regexp.MustCompile(`(?i)filename\*=UTF-8''([^;]+)`)
	asciiFilenamePattern = regexp.MustCompile(`(?i)filename="?([^";]+)"?`)
)

// ParseContentDisposition extracts a filename from a Content-Disposition
// header value, preferring the RFC 5987 UTF-8 parameter over the plain
// quoted or unquoted form.
func ParseContentDisposition(headerValue string) (string, bool) {
	if headerValue == "" {
		return "", false
	}

	if m := utf8FilenamePattern.FindStringSubmatch(headerValue); m != nil {
		if decoded, err := url.PathUnescape(m[1]); err == nil {
			return decoded, true
		}
		// fall back to the plain filename parameter on decoding issues
	}

	if m := asciiFilenamePattern.FindStringSubmatch(headerValue); m != nil && m[1] != "" {
		return m[1], true
	}

	return "", false
}

// NormalizeFilename guarantees a non-empty filename with a case-insensitive
// .pdf suffix.
func NormalizeFilename(filename string) string {
	trimmed := strings.TrimSpace(filename)
	if trimmed == "" {
		return DefaultFilename
	}
	if strings.HasSuffix(strings.ToLower(trimmed), ".pdf") {
		return trimmed
	}
	return trimmed + ".pdf"
}

// ResolveFilename picks the export filename from the response header, then
// the requested filename, then the default, normalized to a .pdf suffix.
func ResolveFilename(contentDisposition, requested string) string {
	if name, ok := ParseContentDisposition(contentDisposition); ok {
		return NormalizeFilename(name)
	}
	return NormalizeFilename(requested)
}
