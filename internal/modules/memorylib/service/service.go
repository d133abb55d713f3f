package service

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"elepad.app/backend/internal/entity"
	familyService "elepad.app/backend/internal/modules/family/service"
	memoryDto "elepad.app/backend/internal/modules/memorylib/dto"
	memoryRepo "elepad.app/backend/internal/modules/memorylib/repository"
	searchService "elepad.app/backend/internal/modules/search/service"
	"elepad.app/backend/pkg/apperror"
	"elepad.app/backend/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemoryService interface {
	CreateMemory(ctx context.Context, userID, groupID uuid.UUID, req memoryDto.CreateMemoryRequest, file io.Reader, fileName string) (*entity.Memory, error)
	GetMemory(ctx context.Context, userID, id uuid.UUID) (*entity.Memory, error)
	ListMemories(ctx context.Context, userID, groupID uuid.UUID, filter memoryDto.ListMemoriesFilter) ([]entity.Memory, error)
	DeleteMemory(ctx context.Context, userID, id uuid.UUID) error
	SearchToken(ctx context.Context, userID uuid.UUID) (string, error)
}

type memoryService struct {
	repo   memoryRepo.MemoryRepository
	family familyService.FamilyService
	media  storage.MediaStorage
	search searchService.MemorySearchService
}

func NewMemoryService(
	repo memoryRepo.MemoryRepository,
	family familyService.FamilyService,
	media storage.MediaStorage,
	search searchService.MemorySearchService,
) MemoryService {
	return &memoryService{repo: repo, family: family, media: media, search: search}
}

func (s *memoryService) CreateMemory(ctx context.Context, userID, groupID uuid.UUID, req memoryDto.CreateMemoryRequest, file io.Reader, fileName string) (*entity.Memory, error) {
	if err := s.family.RequireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	mediaType := mediaTypeFromFileName(fileName)
	if mediaType == "" {
		return nil, apperror.New(http.StatusBadRequest, "unsupported file type", apperror.ErrBadRequest)
	}

	mediaURL, err := s.media.UploadMedia(ctx, file, "memories", fileName)
	if err != nil {
		return nil, apperror.Internal("failed to upload media", err)
	}

	memory := &entity.Memory{
		GroupID:    groupID,
		UploaderID: userID,
		Title:      req.Title,
		Caption:    req.Caption,
		MediaURL:   mediaURL,
		MediaType:  mediaType,
		TakenAt:    req.TakenAt,
	}
	if err := s.repo.Create(ctx, memory); err != nil {
		// Best effort cleanup so the upload does not leak
		if delErr := s.media.DeleteMedia(ctx, mediaURL); delErr != nil {
			log.Printf("failed to clean up orphaned media %s: %v", mediaURL, delErr)
		}
		return nil, apperror.Internal("failed to save memory", err)
	}

	if s.search != nil {
		loaded, err := s.repo.FindByID(ctx, memory.ID)
		if err == nil {
			memory = loaded
		}
		if err := s.search.IndexMemory(memory); err != nil {
			log.Printf("failed to index memory %s: %v", memory.ID, err)
		}
	}

	return memory, nil
}

func (s *memoryService) GetMemory(ctx context.Context, userID, id uuid.UUID) (*entity.Memory, error) {
	memory, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Internal("failed to load memory", err)
	}

	if err := s.family.RequireMembership(ctx, memory.GroupID, userID); err != nil {
		return nil, err
	}
	return memory, nil
}

func (s *memoryService) ListMemories(ctx context.Context, userID, groupID uuid.UUID, filter memoryDto.ListMemoriesFilter) ([]entity.Memory, error) {
	if err := s.family.RequireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	memories, err := s.repo.ListByGroup(ctx, groupID, filter.MediaType, filter.Limit, filter.Offset)
	if err != nil {
		return nil, apperror.Internal("failed to list memories", err)
	}
	return memories, nil
}

func (s *memoryService) DeleteMemory(ctx context.Context, userID, id uuid.UUID) error {
	memory, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return apperror.Internal("failed to load memory", err)
	}

	// Only the uploader may remove a memory
	if memory.UploaderID != userID {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal("failed to delete memory", err)
	}

	if err := s.media.DeleteMedia(ctx, memory.MediaURL); err != nil {
		log.Printf("failed to delete media %s: %v", memory.MediaURL, err)
	}
	if s.search != nil {
		if err := s.search.DeleteMemory(id.String()); err != nil {
			log.Printf("failed to remove memory %s from index: %v", id, err)
		}
	}
	return nil
}

func (s *memoryService) SearchToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.search == nil {
		return "", apperror.Internal("search is not configured", nil)
	}

	groups, err := s.family.ListGroups(ctx, userID)
	if err != nil {
		return "", err
	}

	groupIDs := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	token, err := s.search.GenerateSearchToken(groupIDs)
	if err != nil {
		return "", apperror.Internal("failed to generate search token", err)
	}
	return token, nil
}

func mediaTypeFromFileName(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff":
		return "image"
	case ".mp3", ".wav", ".ogg", ".m4a", ".aac":
		return "audio"
	case ".mp4", ".webm", ".mov", ".mkv":
		return "video"
	default:
		return ""
	}
}
