package verification

import (
	"context"
	"sync/atomic"
	"time"

	"eco-connect/verification-backend/internal/providers"
)

// Static fakes for the evidence providers. Each records whether it was
// called so pipeline tests can assert every stage ran.

type fakeAuthenticity struct {
	confidence float64
	err        error
	delay      time.Duration
	calls      atomic.Int32
}

func (f *fakeAuthenticity) Classify(ctx context.Context, _ []byte) (providers.Classification, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return providers.Classification{}, ctx.Err()
		}
	}
	if f.err != nil {
		return providers.Classification{}, f.err
	}
	return providers.Classification{ConfidenceReal: f.confidence}, nil
}

type fakeActivity struct {
	detections map[string][]providers.Detection // keyed by detector ref
	err        error
	calls      atomic.Int32
	lastRef    atomic.Value
}

func (f *fakeActivity) Detect(_ context.Context, _ []byte, detectorRef string) ([]providers.Detection, error) {
	f.calls.Add(1)
	f.lastRef.Store(detectorRef)
	if f.err != nil {
		return nil, f.err
	}
	return f.detections[detectorRef], nil
}

type fakeFace struct {
	embedding []float64
	err       error
	calls     atomic.Int32
}

func (f *fakeFace) ExtractEmbedding(_ context.Context, _ []byte) ([]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeFace) Similarity(a, b []float64) float64 {
	return providers.CosineSimilarity(a, b)
}

type fakeClock struct {
	captureTime time.Time
	err         error
	calls       atomic.Int32
}

func (f *fakeClock) CaptureTime(_ []byte) (time.Time, error) {
	f.calls.Add(1)
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.captureTime, nil
}
