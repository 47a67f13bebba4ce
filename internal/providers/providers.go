// Package providers defines the evidence-provider capabilities the
// pipeline consumes and the HTTP clients that reach the inference
// services implementing them.
package providers

import (
	"context"
	"errors"
	"time"
)

// Classification is an authenticity-classifier verdict.
type Classification struct {
	ConfidenceReal float64 `json:"confidence_real"`
}

// Detection is one entity found by an activity detector.
type Detection struct {
	EntityClass string  `json:"entity_class"`
	Confidence  float64 `json:"confidence"`
}

// ErrNoFaceFound is returned by FaceMatcher.ExtractEmbedding when the
// image contains no detectable face.
var ErrNoFaceFound = errors.New("no face found in image")

// AuthenticityDetector classifies an image as camera-real vs generated.
type AuthenticityDetector interface {
	Classify(ctx context.Context, image []byte) (Classification, error)
}

// ActivityDetector runs the object detector identified by detectorRef
// against the image and reports every entity it finds.
type ActivityDetector interface {
	Detect(ctx context.Context, image []byte, detectorRef string) ([]Detection, error)
}

// FaceMatcher extracts face embeddings and compares them.
type FaceMatcher interface {
	ExtractEmbedding(ctx context.Context, image []byte) ([]float64, error)
	Similarity(a, b []float64) float64
}

// FactoryConfig carries the endpoints of the inference services.
type FactoryConfig struct {
	AuthenticityURL string
	ActivityURL     string
	FaceURL         string
	Timeout         time.Duration
}

// Set bundles one client per capability.
type Set struct {
	Authenticity AuthenticityDetector
	Activity     ActivityDetector
	Face         FaceMatcher
}

// NewSet builds HTTP clients for every capability.
func NewSet(cfg FactoryConfig) Set {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return Set{
		Authenticity: newAuthenticityClient(cfg.AuthenticityURL, cfg.Timeout),
		Activity:     newActivityClient(cfg.ActivityURL, cfg.Timeout),
		Face:         newFaceClient(cfg.FaceURL, cfg.Timeout),
	}
}
