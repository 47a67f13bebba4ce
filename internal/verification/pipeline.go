package verification

import (
	"context"
	"sync"
	"time"

	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/tasks"
)

// Pipeline runs the four evidence stages for one request. The stages
// have no data dependency on each other and run concurrently, each
// under its own timeout; the report is assembled only after all four
// finish.
type Pipeline struct {
	Authenticity AuthenticityStage
	Freshness    FreshnessStage
	Activity     ActivityStage
	Identity     IdentityStage

	StageTimeout time.Duration
}

// Run evaluates every stage and assembles the report. The only error it
// returns is caller cancellation; provider faults surface as invalid
// stage results inside the report. On cancellation no partial report is
// returned.
func (p *Pipeline) Run(ctx context.Context, image []byte, def tasks.Definition, id identity.Context) (*Report, error) {
	var (
		wg      sync.WaitGroup
		details Details
	)

	run := func(dst *StageResult, eval func(context.Context) StageResult) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stageCtx, cancel := context.WithTimeout(ctx, p.StageTimeout)
			defer cancel()
			*dst = eval(stageCtx)
		}()
	}

	run(&details.AIDetection, func(c context.Context) StageResult {
		return p.Authenticity.Evaluate(c, image)
	})
	run(&details.Exif, func(c context.Context) StageResult {
		return p.Freshness.Evaluate(c, image)
	})
	run(&details.Activity, func(c context.Context) StageResult {
		return p.Activity.Evaluate(c, image, def)
	})
	run(&details.Face, func(c context.Context) StageResult {
		return p.Identity.Evaluate(c, image, id)
	})

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Assemble(details, def), nil
}

// Assemble computes the overall verdict from the four stage results.
// The verdict is the logical AND across all stages; the skipped
// identity stage counts as valid. Points are all-or-nothing.
func Assemble(details Details, def tasks.Definition) *Report {
	overall := true
	for _, r := range details.Stages() {
		if !r.IsValid {
			overall = false
			break
		}
	}

	points := 0
	if overall {
		points = def.Points
	}
	return &Report{
		OverallValid: overall,
		PointsEarned: points,
		TaskType:     string(def.Type),
		Details:      details,
	}
}
