package ledger

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateAward(ctx context.Context, award *Award) error
	SumPoints(ctx context.Context, userID string) (int, error)
	ListAwards(ctx context.Context, userID string, limit int) ([]Award, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Migrate creates the awards table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Award{})
}

func (r *gormRepository) CreateAward(ctx context.Context, award *Award) error {
	return r.db.WithContext(ctx).Create(award).Error
}

func (r *gormRepository) SumPoints(ctx context.Context, userID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Award{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *gormRepository) ListAwards(ctx context.Context, userID string, limit int) ([]Award, error) {
	var awards []Award
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&awards).Error
	return awards, err
}
