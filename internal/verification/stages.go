package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eco-connect/verification-backend/internal/exif"
	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/providers"
	"eco-connect/verification-backend/internal/tasks"
)

// Every stage is fail-closed: missing or ambiguous evidence and
// provider faults all produce an invalid result, never a pass and
// never a panic.

// AuthenticityStage checks the image is camera-real rather than
// generated.
type AuthenticityStage struct {
	Detector  providers.AuthenticityDetector
	Threshold float64
}

func (s AuthenticityStage) Evaluate(ctx context.Context, image []byte) StageResult {
	cls, err := s.Detector.Classify(ctx, image)
	if err != nil {
		return StageResult{
			StageName: StageAIDetection,
			IsValid:   false,
			Message:   fmt.Sprintf("authenticity check unavailable: %v", err),
		}
	}
	if cls.ConfidenceReal < s.Threshold {
		return StageResult{
			StageName:  StageAIDetection,
			IsValid:    false,
			Confidence: confidence(cls.ConfidenceReal),
			Message:    fmt.Sprintf("image rejected: likely AI-generated (confidence of real %.2f below %.2f)", cls.ConfidenceReal, s.Threshold),
		}
	}
	return StageResult{
		StageName:  StageAIDetection,
		IsValid:    true,
		Confidence: confidence(cls.ConfidenceReal),
		Message:    "image passed AI detection check",
	}
}

// FreshnessStage checks the EXIF capture time falls within the window.
type FreshnessStage struct {
	Clock  exif.Clock
	Window time.Duration
	Grace  time.Duration
	Now    func() time.Time
}

func (s FreshnessStage) Evaluate(_ context.Context, image []byte) StageResult {
	captureTime, err := s.Clock.CaptureTime(image)
	if err != nil {
		return StageResult{
			StageName: StageExif,
			IsValid:   false,
			Message:   "timestamp missing/invalid",
		}
	}

	now := s.Now()
	if captureTime.After(now.Add(s.Grace)) {
		return StageResult{
			StageName: StageExif,
			IsValid:   false,
			Message:   fmt.Sprintf("image rejected: future timestamp (%s)", captureTime.Format(time.RFC3339)),
		}
	}
	age := now.Sub(captureTime)
	if age > s.Window {
		return StageResult{
			StageName: StageExif,
			IsValid:   false,
			Message:   fmt.Sprintf("image rejected: older than %s (taken %s)", s.Window, captureTime.Format(time.RFC3339)),
		}
	}
	return StageResult{
		StageName: StageExif,
		IsValid:   true,
		Message:   fmt.Sprintf("image timestamp valid (%s old)", age.Round(time.Minute)),
	}
}

// ActivityStage checks that a person and the activity-specific entity
// appear together in the frame, each above the detection threshold. It
// always uses the detector bound to the request's own task type so a
// photo of one activity cannot be claimed as another.
type ActivityStage struct {
	Detector  providers.ActivityDetector
	Threshold float64
}

func (s ActivityStage) Evaluate(ctx context.Context, image []byte, def tasks.Definition) StageResult {
	detections, err := s.Detector.Detect(ctx, image, def.DetectorRef)
	if err != nil {
		return StageResult{
			StageName: StageActivity,
			IsValid:   false,
			Message:   fmt.Sprintf("activity detection unavailable: %v", err),
		}
	}

	found := make(map[string]float64)
	for _, d := range detections {
		if d.Confidence >= s.Threshold && d.Confidence > found[d.EntityClass] {
			found[d.EntityClass] = d.Confidence
		}
	}

	var missing []string
	for _, entity := range def.RequiredEntities {
		if _, ok := found[entity]; !ok {
			missing = append(missing, entity)
		}
	}
	if len(missing) > 0 {
		return StageResult{
			StageName: StageActivity,
			IsValid:   false,
			Message:   fmt.Sprintf("activity verification failed: %s entity not found", missing[0]),
		}
	}

	conf := found[def.ActivityEntity()]
	return StageResult{
		StageName:  StageActivity,
		IsValid:    true,
		Confidence: confidence(conf),
		Message:    fmt.Sprintf("activity verified: %s", def.Label),
	}
}

// SkippedFaceMessage is the fixed message for the identity stage in
// anonymous mode.
const SkippedFaceMessage = "skipped for anonymous usage"

// IdentityStage matches the submitted photo against the user's stored
// face reference. In anonymous mode it is a deliberate pass-through.
type IdentityStage struct {
	Matcher   providers.FaceMatcher
	Threshold float64
}

func (s IdentityStage) Evaluate(ctx context.Context, image []byte, id identity.Context) StageResult {
	if id.Mode() == identity.ModeAnonymous {
		return StageResult{
			StageName: StageFace,
			IsValid:   true,
			Message:   SkippedFaceMessage,
		}
	}

	ref := id.Reference()
	embedding, err := s.Matcher.ExtractEmbedding(ctx, image)
	if errors.Is(err, providers.ErrNoFaceFound) {
		return StageResult{
			StageName: StageFace,
			IsValid:   false,
			Message:   "no face detected",
		}
	}
	if err != nil {
		return StageResult{
			StageName: StageFace,
			IsValid:   false,
			Message:   fmt.Sprintf("face matching unavailable: %v", err),
		}
	}

	similarity := s.Matcher.Similarity(ref.Embedding, embedding)
	if similarity < s.Threshold {
		return StageResult{
			StageName:  StageFace,
			IsValid:    false,
			Confidence: confidence(similarity),
			Message:    fmt.Sprintf("face verification failed: registered user not found in image (similarity %.4f)", similarity),
		}
	}
	return StageResult{
		StageName:  StageFace,
		IsValid:    true,
		Confidence: confidence(similarity),
		Message:    fmt.Sprintf("face verified: match found (similarity %.4f)", similarity),
	}
}
