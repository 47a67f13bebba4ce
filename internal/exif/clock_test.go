package exif

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureTimeRejectsGarbage(t *testing.T) {
	clock := NewClock()

	_, err := clock.CaptureTime([]byte("not an image at all"))
	assert.ErrorIs(t, err, ErrNoMetadata)

	_, err = clock.CaptureTime(nil)
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestCaptureTimeRejectsJPEGWithoutExif(t *testing.T) {
	// A freshly encoded JPEG carries no EXIF block.
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))

	_, err := NewClock().CaptureTime(buf.Bytes())
	assert.ErrorIs(t, err, ErrNoMetadata)
}
