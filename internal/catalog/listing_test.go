package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingXML(contents ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>buckshot</Name>
  <Prefix>validated/images/</Prefix>
  <KeyCount>` + "0" + `</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
` + strings.Join(contents, "\n") + `
</ListBucketResult>`
}

func contents(key, size, lastModified string) string {
	var b strings.Builder
	b.WriteString("  <Contents>\n    <Key>" + key + "</Key>\n")
	if lastModified != "" {
		b.WriteString("    <LastModified>" + lastModified + "</LastModified>\n")
	}
	b.WriteString("    <ETag>&quot;abc&quot;</ETag>\n")
	if size != "" {
		b.WriteString("    <Size>" + size + "</Size>\n")
	}
	b.WriteString("    <StorageClass>STANDARD</StorageClass>\n  </Contents>")
	return b.String()
}

func TestDecodeListing_FiltersImages(t *testing.T) {
	body := listingXML(
		contents("validated/images/", "0", "2026-01-19T13:00:00.000Z"),
		contents("validated/images/2026-01-19_13:48:20.123456.jpg", "20480", "2026-01-19T22:00:00.000Z"),
		contents("validated/images/readme.txt", "10", "2026-01-19T22:00:00.000Z"),
		contents("validated/images/IMG_0001.PNG", "512", "2026-01-18T08:30:00.000Z"),
		contents("validated/images/clip.mp4", "99999", "2026-01-18T08:30:00.000Z"),
	)

	listing, err := DecodeListing(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, listing.Entries, 2)
	assert.False(t, listing.Truncated)

	assert.Equal(t, "validated/images/2026-01-19_13:48:20.123456.jpg", listing.Entries[0].Key)
	assert.Equal(t, int64(20480), listing.Entries[0].Size)
	assert.True(t, time.Date(2026, 1, 19, 22, 0, 0, 0, time.UTC).Equal(listing.Entries[0].LastModified))

	assert.Equal(t, "validated/images/IMG_0001.PNG", listing.Entries[1].Key)
	assert.Equal(t, int64(512), listing.Entries[1].Size)
}

func TestDecodeListing_EntryScopedDefaults(t *testing.T) {
	fixed := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	// The first entry has no size and no timestamp; the others must not
	// pick up its neighbours' values.
	body := listingXML(
		contents("validated/images/a.jpg", "", ""),
		contents("validated/images/b.jpg", "not-a-number", "yesterday"),
		contents("validated/images/c.jpg", "300", "2026-01-02T03:04:05Z"),
	)

	listing, err := DecodeListing(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, listing.Entries, 3)

	assert.Equal(t, int64(0), listing.Entries[0].Size)
	assert.True(t, fixed.Equal(listing.Entries[0].LastModified))

	assert.Equal(t, int64(0), listing.Entries[1].Size)
	assert.True(t, fixed.Equal(listing.Entries[1].LastModified))

	assert.Equal(t, int64(300), listing.Entries[2].Size)
	assert.True(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Equal(listing.Entries[2].LastModified))
}

func TestDecodeListing_DuplicateKeys(t *testing.T) {
	body := listingXML(
		contents("validated/images/a.jpg", "1", ""),
		contents("validated/images/a.jpg", "2", ""),
	)

	listing, err := DecodeListing(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, int64(1), listing.Entries[0].Size)
}

func TestDecodeListing_Truncated(t *testing.T) {
	body := strings.Replace(listingXML(contents("validated/images/a.jpg", "1", "")),
		"<IsTruncated>false</IsTruncated>", "<IsTruncated>true</IsTruncated>", 1)

	listing, err := DecodeListing(strings.NewReader(body))
	require.NoError(t, err)
	assert.True(t, listing.Truncated)
}

func TestDecodeListing_EmptyAndMalformed(t *testing.T) {
	listing, err := DecodeListing(strings.NewReader(listingXML()))
	require.NoError(t, err)
	assert.Empty(t, listing.Entries)

	listing, err = DecodeListing(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, listing.Entries)

	_, err = DecodeListing(strings.NewReader("<ListBucketResult><Contents><Key>a.jpg</Contents>"))
	assert.Error(t, err)
}
