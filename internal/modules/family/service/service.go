package service

import (
	"context"
	"errors"
	"strings"

	"elepad.app/backend/internal/entity"
	familyDto "elepad.app/backend/internal/modules/family/dto"
	familyRepo "elepad.app/backend/internal/modules/family/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FamilyService interface {
	CreateGroup(ctx context.Context, ownerID uuid.UUID, req familyDto.CreateGroupRequest) (*entity.FamilyGroup, error)
	JoinGroup(ctx context.Context, userID uuid.UUID, req familyDto.JoinGroupRequest) (*entity.FamilyGroup, error)
	ListMembers(ctx context.Context, groupID, requesterID uuid.UUID) ([]entity.FamilyMember, error)
	ListGroups(ctx context.Context, userID uuid.UUID) ([]entity.FamilyGroup, error)
	// RequireMembership fails with Forbidden when the user is not in the group.
	RequireMembership(ctx context.Context, groupID, userID uuid.UUID) error
}

type familyService struct {
	repo familyRepo.FamilyRepository
}

func NewFamilyService(repo familyRepo.FamilyRepository) FamilyService {
	return &familyService{repo: repo}
}

func (s *familyService) CreateGroup(ctx context.Context, ownerID uuid.UUID, req familyDto.CreateGroupRequest) (*entity.FamilyGroup, error) {
	group := &entity.FamilyGroup{
		Name:       req.Name,
		InviteCode: newInviteCode(),
		OwnerID:    ownerID,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, apperror.Internal("failed to create group", err)
	}

	member := &entity.FamilyMember{GroupID: group.ID, UserID: ownerID}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, apperror.Internal("failed to add owner membership", err)
	}
	return group, nil
}

func (s *familyService) JoinGroup(ctx context.Context, userID uuid.UUID, req familyDto.JoinGroupRequest) (*entity.FamilyGroup, error) {
	group, err := s.repo.FindGroupByInviteCode(ctx, strings.ToUpper(req.InviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to look up invite code", err)
	}

	member := &entity.FamilyMember{GroupID: group.ID, UserID: userID}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, apperror.Internal("failed to join group", err)
	}
	return group, nil
}

func (s *familyService) ListMembers(ctx context.Context, groupID, requesterID uuid.UUID) ([]entity.FamilyMember, error) {
	if err := s.RequireMembership(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperror.Internal("failed to list members", err)
	}
	return members, nil
}

func (s *familyService) ListGroups(ctx context.Context, userID uuid.UUID) ([]entity.FamilyGroup, error) {
	groups, err := s.repo.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to list groups", err)
	}
	return groups, nil
}

func (s *familyService) RequireMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	membership, err := s.repo.FindMembership(ctx, groupID, userID)
	if err != nil {
		return apperror.Internal("failed to check membership", err)
	}
	if membership == nil {
		return apperror.ErrForbidden
	}
	return nil
}

// newInviteCode derives a short shareable code. Collisions are caught by the
// unique index and are vanishingly unlikely at family-group scale.
func newInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
