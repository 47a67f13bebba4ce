// Package imagemeta validates uploaded image payloads before they are
// handed to any evidence provider.
package imagemeta

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyImage        = errors.New("image payload is empty")
	ErrImageTooLarge     = errors.New("image payload exceeds size ceiling")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Info describes an accepted image payload.
type Info struct {
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

var acceptedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Validate checks the payload against the size ceiling and the accepted
// formats (PNG and JPEG). maxBytes <= 0 disables the ceiling.
func Validate(payload []byte, maxBytes int) (Info, error) {
	if len(payload) == 0 {
		return Info{}, ErrEmptyImage
	}
	if maxBytes > 0 && len(payload) > maxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrImageTooLarge, len(payload), maxBytes)
	}

	mt := mimetype.Detect(payload)
	if !acceptedMIME[mt.String()] {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return Info{
		MIME:   mt.String(),
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   len(payload),
	}, nil
}

// Digest returns the SHA-256 hex digest of the payload, used as the
// duplicate-submission key.
func Digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
