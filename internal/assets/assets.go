// Package assets converts local file paths into URLs the webview can load
// and resolves them back on the serving side.
package assets

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme is the custom protocol used by ConvertFileSrc.
const Scheme = "asset"

// RoutePrefix is where the HTTP server exposes converted files.
const RoutePrefix = "/asset/"

// Errors returned when resolving converted URLs.
var (
	ErrEmptyPath    = errors.New("asset path is empty")
	ErrOutsideRoot  = errors.New("asset path outside of root")
	ErrNotAssetPath = errors.New("not an asset url")
)

// ConvertFileSrc returns the asset protocol URL for a local file path. It
// performs no I/O and does not check that the file exists.
func ConvertFileSrc(path string) string {
	return Scheme + "://localhost/" + url.PathEscape(path)
}

// Converter rewrites file paths into URLs served by the HTTP API.
type Converter struct {
	// BaseURL is the API origin, e.g. http://127.0.0.1:1420. Empty means
	// the asset protocol form returned by ConvertFileSrc.
	BaseURL string
}

// Convert returns the URL of path.
func (c Converter) Convert(path string) string {
	if c.BaseURL == "" {
		return ConvertFileSrc(path)
	}
	return strings.TrimRight(c.BaseURL, "/") + RoutePrefix + url.PathEscape(path)
}

// DecodeFileSrc reverses ConvertFileSrc and Converter.Convert.
func DecodeFileSrc(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAssetPath, err)
	}

	var escaped string
	switch {
	case u.Scheme == Scheme:
		escaped = strings.TrimPrefix(u.EscapedPath(), "/")
	case strings.HasPrefix(u.EscapedPath(), RoutePrefix):
		escaped = strings.TrimPrefix(u.EscapedPath(), RoutePrefix)
	default:
		return "", ErrNotAssetPath
	}

	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAssetPath, err)
	}
	if path == "" {
		return "", ErrEmptyPath
	}
	return path, nil
}

// Resolve checks that path is inside root and returns it cleaned.
func Resolve(root, path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return absPath, nil
}
