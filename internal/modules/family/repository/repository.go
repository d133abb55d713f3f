package repository

import (
	"context"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FamilyRepository interface {
	CreateGroup(ctx context.Context, group *entity.FamilyGroup) error
	FindGroupByID(ctx context.Context, id uuid.UUID) (*entity.FamilyGroup, error)
	FindGroupByInviteCode(ctx context.Context, code string) (*entity.FamilyGroup, error)
	// AddMember is idempotent: re-joining a group is a no-op.
	AddMember(ctx context.Context, member *entity.FamilyMember) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]entity.FamilyMember, error)
	FindMembership(ctx context.Context, groupID, userID uuid.UUID) (*entity.FamilyMember, error)
	ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]entity.FamilyGroup, error)
}

type familyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) CreateGroup(ctx context.Context, group *entity.FamilyGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *familyRepository) FindGroupByID(ctx context.Context, id uuid.UUID) (*entity.FamilyGroup, error) {
	var group entity.FamilyGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *familyRepository) FindGroupByInviteCode(ctx context.Context, code string) (*entity.FamilyGroup, error) {
	var group entity.FamilyGroup
	err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *familyRepository) AddMember(ctx context.Context, member *entity.FamilyMember) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *familyRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]entity.FamilyMember, error) {
	var members []entity.FamilyMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at asc").
		Find(&members).Error
	return members, err
}

func (r *familyRepository) FindMembership(ctx context.Context, groupID, userID uuid.UUID) (*entity.FamilyMember, error) {
	var members []entity.FamilyMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Limit(1).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	return &members[0], nil
}

func (r *familyRepository) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]entity.FamilyGroup, error) {
	var groups []entity.FamilyGroup
	err := r.db.WithContext(ctx).
		Joins("JOIN family_members ON family_members.group_id = family_groups.id").
		Where("family_members.user_id = ?", userID).
		Find(&groups).Error
	return groups, err
}
