// Package verification implements the multi-stage photo verification
// pipeline that scores conservation-activity submissions.
package verification

import (
	"time"

	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/tasks"
)

// Stage names, fixed across deployments; they are the keys of the
// verification_details object in the report.
const (
	StageAIDetection = "ai_detection"
	StageExif        = "exif_verification"
	StageActivity    = "activity_verification"
	StageFace        = "face_verification"
)

// Request is one verification submission.
type Request struct {
	TaskType    tasks.Type    `json:"task_type"`
	Image       []byte        `json:"-"`
	Mode        identity.Mode `json:"mode"`
	UserID      string        `json:"user_id,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// StageResult is the uniform outcome of one evidence check. It is
// produced fresh per request and never mutated afterwards.
type StageResult struct {
	StageName  string   `json:"-"`
	IsValid    bool     `json:"is_valid"`
	Confidence *float64 `json:"confidence,omitempty"`
	Message    string   `json:"message"`
}

// Details holds the four stage results in their fixed presentation
// order: authenticity, freshness, activity, identity.
type Details struct {
	AIDetection StageResult `json:"ai_detection"`
	Exif        StageResult `json:"exif_verification"`
	Activity    StageResult `json:"activity_verification"`
	Face        StageResult `json:"face_verification"`
}

// Stages returns the results in presentation order.
func (d Details) Stages() []StageResult {
	return []StageResult{d.AIDetection, d.Exif, d.Activity, d.Face}
}

// Report is the externally visible verdict for one submission.
type Report struct {
	OverallValid bool    `json:"overall_valid"`
	PointsEarned int     `json:"points_earned"`
	TaskType     string  `json:"task_type"`
	Details      Details `json:"verification_details"`
}

func confidence(v float64) *float64 { return &v }
