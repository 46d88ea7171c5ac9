package images

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Camera uploads are named like 2026-01-19_13:48:20.123456.jpg
var (
	captureWithFraction = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})_(\d{2}):(\d{2}):(\d{2})\.(\d+)`)
	captureSeconds      = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})_(\d{2}):(\d{2}):(\d{2})`)
)

// captureLayout matches "January 19, 2026 at 1:48 PM"
const captureLayout = "January 2, 2006 at 3:04 PM"

// ParseCaptureTime extracts the capture time embedded in an object key or
// filename. The fractional seconds are matched but not used. The result
// is in local time. ok is false when no timestamp is present or the name
// has no extension.
func ParseCaptureTime(name string) (t time.Time, ok bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return time.Time{}, false
	}
	name = name[:i]

	m := captureWithFraction.FindStringSubmatch(name)
	if m == nil {
		m = captureSeconds.FindStringSubmatch(name)
	}
	if m == nil {
		return time.Time{}, false
	}

	var fields [6]int
	for i := range fields {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, false
		}
		fields[i] = n
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.Local), true
}

// EffectiveTime is the capture time from the key, or lastModified when the
// key carries none.
func EffectiveTime(key string, lastModified time.Time) time.Time {
	if t, ok := ParseCaptureTime(key); ok {
		return t
	}
	return lastModified
}

// FormatCaptureTime renders the capture date of key for display
func FormatCaptureTime(key string) string {
	t, ok := ParseCaptureTime(Filename(key))
	if !ok {
		return "Unknown"
	}
	return t.Format(captureLayout)
}
