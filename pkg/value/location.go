package value

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Supported URI schemes for File/Directory locations.
const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// ParseLocationScheme extracts the scheme from a location URI.
// Returns ("file", "/data/x") for "file:///data/x" and ("", raw) for bare
// strings with no scheme.
func ParseLocationScheme(location string) (scheme, p string) {
	if i := strings.Index(location, "://"); i > 0 {
		scheme = strings.ToLower(location[:i])
		p = location[i+3:]
		if scheme == SchemeFile {
			p = "/" + strings.TrimLeft(p, "/")
		}
		return scheme, p
	}
	if strings.HasPrefix(location, "file:") {
		return SchemeFile, strings.TrimPrefix(location, "file:")
	}
	return "", location
}

// BuildLocation constructs a scheme://path URI.
func BuildLocation(scheme, p string) string {
	return scheme + "://" + p
}

// FileURI returns the file URI for a filesystem path. Absolute paths give
// file:///..., relative paths keep their form as file:rel/path.
func FileURI(p string) string {
	if !filepath.IsAbs(p) {
		return SchemeFile + ":" + (&url.URL{Path: filepath.ToSlash(p)}).EscapedPath()
	}
	u := url.URL{Scheme: SchemeFile, Path: filepath.ToSlash(p)}
	return u.String()
}

// PathFromLocation converts a location to a local filesystem path. A location
// without scheme is treated as file. Percent-encoding is decoded.
func PathFromLocation(location string) (string, error) {
	scheme, p := ParseLocationScheme(location)
	switch scheme {
	case SchemeFile, "":
		return DecodePath(p), nil
	default:
		return "", fmt.Errorf("location %q: scheme %q has no local path", location, scheme)
	}
}

// DecodePath URL-decodes a file path, returning it unchanged if it is not
// valid percent-encoding.
func DecodePath(p string) string {
	if p == "" {
		return p
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}
