package repository

import (
	"context"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemoryRepository interface {
	Create(ctx context.Context, memory *entity.Memory) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Memory, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, mediaType *string, limit, offset int) ([]entity.Memory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

func (r *memoryRepository) Create(ctx context.Context, memory *entity.Memory) error {
	return r.db.WithContext(ctx).Create(memory).Error
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Memory, error) {
	var memory entity.Memory
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("id = ?", id).
		First(&memory).Error
	if err != nil {
		return nil, err
	}
	return &memory, nil
}

func (r *memoryRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, mediaType *string, limit, offset int) ([]entity.Memory, error) {
	query := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("group_id = ?", groupID)
	if mediaType != nil {
		query = query.Where("media_type = ?", *mediaType)
	}

	var memories []entity.Memory
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&memories).Error
	return memories, err
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Memory{}, "id = ?", id).Error
}
