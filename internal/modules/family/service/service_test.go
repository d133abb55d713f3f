package service

import (
	"context"
	"strings"
	"testing"

	"elepad.app/backend/internal/bootstrap"
	"elepad.app/backend/internal/entity"
	familyDto "elepad.app/backend/internal/modules/family/dto"
	familyRepo "elepad.app/backend/internal/modules/family/repository"
	"elepad.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (FamilyService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, bootstrap.Migrate(db))
	return NewFamilyService(familyRepo.NewFamilyRepository(db)), db
}

func createUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := entity.User{DisplayName: "Tester", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ownerID := createUser(t, db)

	group, err := svc.CreateGroup(ctx, ownerID, familyDto.CreateGroupRequest{Name: "Smith Family"})
	require.NoError(t, err)
	assert.Equal(t, "Smith Family", group.Name)
	assert.Len(t, group.InviteCode, 8)
	assert.Equal(t, strings.ToUpper(group.InviteCode), group.InviteCode)

	// The owner is a member from the start
	members, err := svc.ListMembers(ctx, group.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, ownerID, members[0].UserID)
}

func TestJoinGroup(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ownerID := createUser(t, db)
	joinerID := createUser(t, db)

	group, err := svc.CreateGroup(ctx, ownerID, familyDto.CreateGroupRequest{Name: "Smith Family"})
	require.NoError(t, err)

	t.Run("ByInviteCode", func(t *testing.T) {
		joined, err := svc.JoinGroup(ctx, joinerID, familyDto.JoinGroupRequest{InviteCode: group.InviteCode})
		require.NoError(t, err)
		assert.Equal(t, group.ID, joined.ID)

		members, err := svc.ListMembers(ctx, group.ID, joinerID)
		require.NoError(t, err)
		assert.Len(t, members, 2)
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joinerID, familyDto.JoinGroupRequest{InviteCode: strings.ToLower(group.InviteCode)})
		require.NoError(t, err)
	})

	t.Run("RejoinIsIdempotent", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joinerID, familyDto.JoinGroupRequest{InviteCode: group.InviteCode})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&entity.FamilyMember{}).Where("group_id = ?", group.ID).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		_, err := svc.JoinGroup(ctx, joinerID, familyDto.JoinGroupRequest{InviteCode: "NOPE1234"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestListMembersRequiresMembership(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ownerID := createUser(t, db)
	strangerID := createUser(t, db)

	group, err := svc.CreateGroup(ctx, ownerID, familyDto.CreateGroupRequest{Name: "Smith Family"})
	require.NoError(t, err)

	_, err = svc.ListMembers(ctx, group.ID, strangerID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestListGroups(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	ownerID := createUser(t, db)
	otherID := createUser(t, db)

	_, err := svc.CreateGroup(ctx, ownerID, familyDto.CreateGroupRequest{Name: "First"})
	require.NoError(t, err)
	_, err = svc.CreateGroup(ctx, ownerID, familyDto.CreateGroupRequest{Name: "Second"})
	require.NoError(t, err)

	groups, err := svc.ListGroups(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	groups, err = svc.ListGroups(ctx, otherID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
