package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eco-connect/verification-backend/internal/config"
	"eco-connect/verification-backend/internal/exif"
	"eco-connect/verification-backend/internal/guard"
	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/providers"
	"eco-connect/verification-backend/internal/tasks"
	"eco-connect/verification-backend/pkg/imagemeta"
)

// Service is the entry point for verifying a submission.
type Service interface {
	Verify(ctx context.Context, req Request) (*Report, error)
}

// PointsLedger credits eco-points for valid authenticated reports.
// Implemented by the ledger package; optional.
type PointsLedger interface {
	Credit(ctx context.Context, userID string, taskType string, points int) error
}

type verificationService struct {
	registry *tasks.Registry
	pipeline *Pipeline
	refs     identity.ReferenceStore
	guard    guard.Guard
	ledger   PointsLedger
	maxBytes int
	logger   *slog.Logger
}

// Deps carries the collaborators of the verification service. Guard and
// Ledger are optional; Logger defaults to slog.Default().
type Deps struct {
	Registry  *tasks.Registry
	Providers providers.Set
	Clock     exif.Clock
	RefStore  identity.ReferenceStore
	Guard     guard.Guard
	Ledger    PointsLedger
	Logger    *slog.Logger
}

// NewService wires the pipeline from configuration.
func NewService(cfg config.VerificationConfig, deps Deps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pipeline := &Pipeline{
		Authenticity: AuthenticityStage{
			Detector:  deps.Providers.Authenticity,
			Threshold: cfg.AuthenticityThreshold,
		},
		Freshness: FreshnessStage{
			Clock:  deps.Clock,
			Window: cfg.FreshnessWindow,
			Grace:  cfg.ClockSkewGrace,
			Now:    time.Now,
		},
		Activity: ActivityStage{
			Detector:  deps.Providers.Activity,
			Threshold: cfg.DetectionThreshold,
		},
		Identity: IdentityStage{
			Matcher:   deps.Providers.Face,
			Threshold: cfg.FaceSimilarityThreshold,
		},
		StageTimeout: cfg.StageTimeout,
	}
	return &verificationService{
		registry: deps.Registry,
		pipeline: pipeline,
		refs:     deps.RefStore,
		guard:    deps.Guard,
		ledger:   deps.Ledger,
		maxBytes: cfg.MaxImageBytes,
		logger:   logger,
	}
}

// Verify runs the precondition checks and then the pipeline. Once
// preconditions pass the pipeline always completes and returns a full
// report; stage faults never abort it.
func (s *verificationService) Verify(ctx context.Context, req Request) (*Report, error) {
	requestID := uuid.New().String()
	started := time.Now()

	// Precondition: payload must be a non-empty PNG/JPEG under the
	// ceiling before any provider sees it.
	info, err := imagemeta.Validate(req.Image, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid image payload: %w", err)
	}

	// Precondition: claimed task type must be registered.
	def, err := s.registry.Resolve(req.TaskType)
	if err != nil {
		return nil, err
	}

	// Precondition: authenticated mode needs a stored face reference.
	idCtx, err := identity.Resolve(ctx, req.Mode, req.UserID, s.refs)
	if err != nil {
		return nil, err
	}

	// Precondition: reject repeat submissions of the same photo.
	if s.guard != nil {
		userKey := req.UserID
		if userKey == "" {
			userKey = string(identity.ModeAnonymous)
		}
		if err := s.guard.Check(ctx, userKey, imagemeta.Digest(req.Image)); err != nil {
			return nil, err
		}
	}

	report, err := s.pipeline.Run(ctx, req.Image, def, idCtx)
	if err != nil {
		return nil, err
	}

	if report.OverallValid && s.ledger != nil && idCtx.Mode() == identity.ModeAuthenticated {
		if err := s.ledger.Credit(ctx, req.UserID, report.TaskType, report.PointsEarned); err != nil {
			// The verdict stands; crediting is retried by the caller.
			s.logger.Error("ledger credit failed",
				"request_id", requestID,
				"user_id", req.UserID,
				"error", err)
		}
	}

	s.logger.Info("verification completed",
		"request_id", requestID,
		"task_type", report.TaskType,
		"mode", string(idCtx.Mode()),
		"image_mime", info.MIME,
		"overall_valid", report.OverallValid,
		"points_earned", report.PointsEarned,
		"elapsed", time.Since(started))
	for _, stage := range report.Details.Stages() {
		if !stage.IsValid {
			s.logger.Debug("stage failed",
				"request_id", requestID,
				"stage", stage.StageName,
				"message", stage.Message)
		}
	}

	return report, nil
}
