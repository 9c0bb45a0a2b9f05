package audit

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the read side of the audit trail.
type Repository interface {
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByEntity(ctx context.Context, entityType, entityID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
