package images

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsImageKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"validated/images/a.jpg", true},
		{"validated/images/a.JPEG", true},
		{"validated/images/a.webp", true},
		{"validated/images/a.svg", true},
		{"validated/images/", false},
		{"validated/images/notes.txt", false},
		{"validated/images/a.jpg.json", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsImageKey(tt.key))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "image1234.jpg", Filename("validated/images/image1234.jpg"))
	assert.Equal(t, "image1234.jpg", Filename("image1234.jpg"))
	assert.Equal(t, "", Filename("validated/images/"))
}

func TestURLs(t *testing.T) {
	key := "validated/images/2026-01-19_13:48:20.123456.jpg"

	assert.Equal(t,
		"https://cdn.example.com/validated/images/2026-01-19_13:48:20.123456.jpg",
		ImageURL("https://cdn.example.com/", "validated/images/", key))
	assert.Equal(t,
		"https://cdn.example.com/validated/metadata/2026-01-19_13:48:20.123456.jpg.json",
		MetadataURL("https://cdn.example.com", "validated/metadata", key))
	assert.Equal(t,
		"https://cdn.example.com/my%20photo.png",
		ObjectURL("https://cdn.example.com", "", "my photo.png"))
}

func TestParseCaptureTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "fractional seconds",
			input:  "2026-01-19_13:48:20.123456.jpg",
			want:   time.Date(2026, time.January, 19, 13, 48, 20, 0, time.Local),
			wantOK: true,
		},
		{
			name:   "full key",
			input:  "validated/images/2025-12-31_23:59:59.5.png",
			want:   time.Date(2025, time.December, 31, 23, 59, 59, 0, time.Local),
			wantOK: true,
		},
		{
			name:   "no fractional part",
			input:  "2026-03-02_07:05:09.jpg",
			want:   time.Date(2026, time.March, 2, 7, 5, 9, 0, time.Local),
			wantOK: true,
		},
		{name: "no extension", input: "2026-03-02_07:05:09"},
		{name: "no timestamp", input: "IMG_0001.jpg"},
		{name: "date only", input: "2026-01-19.jpg"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCaptureTime(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEffectiveTime(t *testing.T) {
	lastModified := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, EffectiveTime("IMG_0001.jpg", lastModified).Equal(lastModified))

	got := EffectiveTime("validated/images/2026-01-19_13:48:20.1.jpg", lastModified)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 19, got.Day())
	assert.Equal(t, 13, got.Hour())
}

func TestFormatCaptureTime(t *testing.T) {
	assert.Equal(t, "January 19, 2026 at 1:48 PM", FormatCaptureTime("validated/images/2026-01-19_13:48:20.123456.jpg"))
	assert.Equal(t, "Unknown", FormatCaptureTime("validated/images/IMG_0001.jpg"))
}
