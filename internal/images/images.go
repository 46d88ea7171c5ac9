package images

import (
	"net/url"
	"path"
	"strings"
)

// SupportedExtensions lists the file extensions treated as images
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"}

// IsImageKey reports whether an object key names an image rather than a
// directory marker or some other file.
func IsImageKey(key string) bool {
	if key == "" || strings.HasSuffix(key, "/") {
		return false
	}
	lower := strings.ToLower(key)
	for _, ext := range SupportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Filename returns the last path segment of an object key
// (validated/images/image1234.jpg -> image1234.jpg)
func Filename(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// ObjectURL builds <base>/<prefix><filename>. The prefix keeps its own
// slashes; the filename is escaped as a single path segment.
func ObjectURL(base, prefix, filename string) string {
	return strings.TrimSuffix(base, "/") + "/" + normalizePrefix(prefix) + url.PathEscape(filename)
}

// ImageURL is the public CDN location of the raw image for key
func ImageURL(base, imagesPrefix, key string) string {
	return ObjectURL(base, imagesPrefix, Filename(key))
}

// MetadataURL is the location of the sidecar detection record for key
func MetadataURL(base, metadataPrefix, key string) string {
	return ObjectURL(base, metadataPrefix, Filename(key)+".json")
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix == "" {
		return ""
	}
	return path.Clean(prefix) + "/"
}
