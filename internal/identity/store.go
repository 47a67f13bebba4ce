package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// faceReferenceRow maps the auth subsystem's face_references table.
// Embeddings are stored as a JSON array of floats.
type faceReferenceRow struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Embedding []byte    `gorm:"column:embedding"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (faceReferenceRow) TableName() string { return "face_references" }

type gormReferenceStore struct {
	db *gorm.DB
}

// NewGormReferenceStore reads face references from the authentication
// subsystem's database. The store never writes.
func NewGormReferenceStore(db *gorm.DB) ReferenceStore {
	return &gormReferenceStore{db: db}
}

func (s *gormReferenceStore) GetFaceReference(ctx context.Context, userID string) (*FaceReference, error) {
	var row faceReferenceRow
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var embedding []float64
	if err := json.Unmarshal(row.Embedding, &embedding); err != nil {
		return nil, fmt.Errorf("corrupt face reference for %s: %w", userID, err)
	}
	return &FaceReference{
		UserID:    row.UserID,
		Embedding: embedding,
		CreatedAt: row.CreatedAt,
	}, nil
}

// MemoryReferenceStore is an in-memory ReferenceStore for tests and
// single-node deployments.
type MemoryReferenceStore struct {
	mu   sync.RWMutex
	refs map[string]*FaceReference
}

func NewMemoryReferenceStore() *MemoryReferenceStore {
	return &MemoryReferenceStore{refs: make(map[string]*FaceReference)}
}

// Put registers a reference; it stands in for the external auth
// subsystem's enrollment flow.
func (s *MemoryReferenceStore) Put(ref *FaceReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref.UserID] = ref
}

func (s *MemoryReferenceStore) GetFaceReference(_ context.Context, userID string) (*FaceReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs[userID], nil
}
