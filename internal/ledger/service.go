// Package ledger records eco-points credited for verified submissions.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	// Credit records an award. Zero or negative points are rejected:
	// invalid reports carry no reward and must not reach the ledger.
	Credit(ctx context.Context, userID string, taskType string, points int) error
	Balance(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string, limit int) ([]Award, error)
}

type ledgerService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &ledgerService{repo: repo}
}

func (s *ledgerService) Credit(ctx context.Context, userID string, taskType string, points int) error {
	if userID == "" {
		return fmt.Errorf("cannot credit points without a user id")
	}
	if points <= 0 {
		return fmt.Errorf("cannot credit %d points for %s", points, taskType)
	}
	award := &Award{
		ID:        uuid.New(),
		UserID:    userID,
		TaskType:  taskType,
		Points:    points,
		CreatedAt: time.Now(),
	}
	return s.repo.CreateAward(ctx, award)
}

func (s *ledgerService) Balance(ctx context.Context, userID string) (int, error) {
	return s.repo.SumPoints(ctx, userID)
}

func (s *ledgerService) History(ctx context.Context, userID string, limit int) ([]Award, error) {
	return s.repo.ListAwards(ctx, userID, limit)
}
