// Package exif extracts capture timestamps from image metadata.
package exif

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// ErrNoMetadata is returned when the image carries no EXIF block or no
// usable timestamp tag.
var ErrNoMetadata = errors.New("no capture timestamp in image metadata")

// Clock reads the capture time of an image.
type Clock interface {
	CaptureTime(image []byte) (time.Time, error)
}

// exifTimeLayout is the EXIF DateTime string format.
const exifTimeLayout = "2006:01:02 15:04:05"

type metadataClock struct{}

// NewClock returns a Clock backed by the image's embedded EXIF data.
func NewClock() Clock {
	return metadataClock{}
}

// CaptureTime prefers DateTimeOriginal and falls back to DateTime,
// matching how cameras populate the two tags.
func (metadataClock) CaptureTime(image []byte) (time.Time, error) {
	x, err := goexif.Decode(bytes.NewReader(image))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	for _, field := range []goexif.FieldName{goexif.DateTimeOriginal, goexif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		ts, err := time.ParseInLocation(exifTimeLayout, raw, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: unparsable timestamp %q", ErrNoMetadata, raw)
		}
		return ts, nil
	}

	return time.Time{}, ErrNoMetadata
}
