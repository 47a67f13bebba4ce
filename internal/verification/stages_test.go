package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/providers"
	"eco-connect/verification-backend/internal/tasks"
)

var testImage = []byte("jpeg bytes")

func plantationDef(t *testing.T) tasks.Definition {
	t.Helper()
	def, err := tasks.NewRegistry().Resolve(tasks.TypePlantation)
	require.NoError(t, err)
	return def
}

func TestAuthenticityStage(t *testing.T) {
	ctx := context.Background()

	t.Run("passes above threshold", func(t *testing.T) {
		stage := AuthenticityStage{Detector: &fakeAuthenticity{confidence: 0.95}, Threshold: 0.5}
		res := stage.Evaluate(ctx, testImage)
		assert.True(t, res.IsValid)
		assert.Equal(t, StageAIDetection, res.StageName)
		require.NotNil(t, res.Confidence)
		assert.InDelta(t, 0.95, *res.Confidence, 1e-9)
	})

	t.Run("fails below threshold", func(t *testing.T) {
		stage := AuthenticityStage{Detector: &fakeAuthenticity{confidence: 0.3}, Threshold: 0.5}
		res := stage.Evaluate(ctx, testImage)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "AI-generated")
	})

	t.Run("fails closed on provider error", func(t *testing.T) {
		stage := AuthenticityStage{Detector: &fakeAuthenticity{err: errors.New("detector offline")}, Threshold: 0.5}
		res := stage.Evaluate(ctx, testImage)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "unavailable")
	})
}

func TestFreshnessStageBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour
	grace := 5 * time.Minute

	cases := []struct {
		name    string
		capture time.Time
		valid   bool
	}{
		{"one day old", now.Add(-24 * time.Hour), true},
		{"one second inside window", now.Add(-window + time.Second), true},
		{"exactly at window", now.Add(-window), true},
		{"one second past window", now.Add(-window - time.Second), false},
		{"future within grace", now.Add(2 * time.Minute), true},
		{"future beyond grace", now.Add(10 * time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stage := FreshnessStage{
				Clock:  &fakeClock{captureTime: tc.capture},
				Window: window,
				Grace:  grace,
				Now:    func() time.Time { return now },
			}
			res := stage.Evaluate(context.Background(), testImage)
			assert.Equal(t, tc.valid, res.IsValid, res.Message)
			assert.Equal(t, StageExif, res.StageName)
		})
	}
}

func TestFreshnessStageMissingMetadata(t *testing.T) {
	stage := FreshnessStage{
		Clock:  &fakeClock{err: errors.New("no exif block")},
		Window: 7 * 24 * time.Hour,
		Grace:  5 * time.Minute,
		Now:    time.Now,
	}
	res := stage.Evaluate(context.Background(), testImage)
	assert.False(t, res.IsValid)
	assert.Equal(t, "timestamp missing/invalid", res.Message)
}

func TestActivityStage(t *testing.T) {
	ctx := context.Background()
	def := plantationDef(t)

	detections := func(ds ...providers.Detection) *fakeActivity {
		return &fakeActivity{detections: map[string][]providers.Detection{def.DetectorRef: ds}}
	}

	t.Run("both entities above threshold", func(t *testing.T) {
		stage := ActivityStage{Threshold: 0.5, Detector: detections(
			providers.Detection{EntityClass: "person", Confidence: 0.9},
			providers.Detection{EntityClass: "plantation", Confidence: 0.9},
		)}
		res := stage.Evaluate(ctx, testImage, def)
		assert.True(t, res.IsValid)
		assert.Equal(t, StageActivity, res.StageName)
	})

	t.Run("person below threshold fails despite strong activity", func(t *testing.T) {
		stage := ActivityStage{Threshold: 0.5, Detector: detections(
			providers.Detection{EntityClass: "person", Confidence: 0.2},
			providers.Detection{EntityClass: "plantation", Confidence: 0.99},
		)}
		res := stage.Evaluate(ctx, testImage, def)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "person entity not found")
	})

	t.Run("activity entity missing fails despite strong person", func(t *testing.T) {
		stage := ActivityStage{Threshold: 0.5, Detector: detections(
			providers.Detection{EntityClass: "person", Confidence: 0.99},
		)}
		res := stage.Evaluate(ctx, testImage, def)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "plantation entity not found")
	})

	t.Run("uses the detector bound to the task", func(t *testing.T) {
		fake := detections()
		stage := ActivityStage{Threshold: 0.5, Detector: fake}
		stage.Evaluate(ctx, testImage, def)
		assert.Equal(t, def.DetectorRef, fake.lastRef.Load())
	})

	t.Run("fails closed on provider error", func(t *testing.T) {
		stage := ActivityStage{Threshold: 0.5, Detector: &fakeActivity{err: errors.New("model crashed")}}
		res := stage.Evaluate(ctx, testImage, def)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "unavailable")
	})
}

func TestIdentityStageAnonymousSkip(t *testing.T) {
	stage := IdentityStage{Matcher: &fakeFace{}, Threshold: 0.6}

	res := stage.Evaluate(context.Background(), testImage, identity.Anonymous())
	assert.True(t, res.IsValid)
	assert.Equal(t, SkippedFaceMessage, res.Message)
}

func TestIdentityStageAuthenticated(t *testing.T) {
	ctx := context.Background()
	ref := &identity.FaceReference{UserID: "user-1", Embedding: []float64{1, 0, 0}}
	store := identity.NewMemoryReferenceStore()
	store.Put(ref)
	idCtx, err := identity.Resolve(ctx, identity.ModeAuthenticated, "user-1", store)
	require.NoError(t, err)

	t.Run("matching face passes", func(t *testing.T) {
		stage := IdentityStage{Matcher: &fakeFace{embedding: []float64{0.9, 0.1, 0}}, Threshold: 0.6}
		res := stage.Evaluate(ctx, testImage, idCtx)
		assert.True(t, res.IsValid)
		assert.Contains(t, res.Message, "match found")
	})

	t.Run("dissimilar face fails", func(t *testing.T) {
		stage := IdentityStage{Matcher: &fakeFace{embedding: []float64{0, 1, 0}}, Threshold: 0.6}
		res := stage.Evaluate(ctx, testImage, idCtx)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "registered user not found")
	})

	t.Run("no face detected is a failure not an error", func(t *testing.T) {
		stage := IdentityStage{Matcher: &fakeFace{err: providers.ErrNoFaceFound}, Threshold: 0.6}
		res := stage.Evaluate(ctx, testImage, idCtx)
		assert.False(t, res.IsValid)
		assert.Equal(t, "no face detected", res.Message)
	})

	t.Run("fails closed on provider error", func(t *testing.T) {
		stage := IdentityStage{Matcher: &fakeFace{err: errors.New("embedding service down")}, Threshold: 0.6}
		res := stage.Evaluate(ctx, testImage, idCtx)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Message, "unavailable")
	})
}
