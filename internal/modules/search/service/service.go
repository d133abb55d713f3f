package service

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"elepad.app/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

// MemorySearchService keeps the memories index in sync and issues scoped
// search tokens so clients can only query the groups they belong to.
type MemorySearchService interface {
	IndexMemory(memory *entity.Memory) error
	DeleteMemory(id string) error
	GenerateSearchToken(groupIDs []uuid.UUID) (string, error)
}

type memorySearchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
}

func NewMemorySearchService(client meilisearch.ServiceManager) MemorySearchService {
	masterKey := os.Getenv("MEILI_MASTER_KEY")
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &memorySearchService{
		client:    client,
		masterKey: masterKey,
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *memorySearchService) initIndexes() {
	filterableAttrs := []string{"group_id", "media_type"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("memories").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update memories filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "taken_at"}
	_, err = s.client.Index("memories").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update memories sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *memorySearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"memories"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliMemoryDoc struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	Title     string `json:"title"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	TakenAt   int64  `json:"taken_at"`
	CreatedAt int64  `json:"created_at"`
	Uploader  string `json:"uploader"`
}

func (s *memorySearchService) IndexMemory(memory *entity.Memory) error {
	doc := meiliMemoryDoc{
		ID:        memory.ID.String(),
		GroupID:   memory.GroupID.String(),
		Title:     memory.Title,
		Caption:   getStringOrEmpty(memory.Caption),
		MediaType: memory.MediaType,
		MediaURL:  memory.MediaURL,
		CreatedAt: memory.CreatedAt.Unix(),
		Uploader:  memory.Uploader.DisplayName,
	}
	if memory.TakenAt != nil {
		doc.TakenAt = memory.TakenAt.Unix()
	}

	task, err := s.client.Index("memories").AddDocuments([]meiliMemoryDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed memory %s, task id: %d", memory.ID, task.TaskUID)
	return nil
}

func (s *memorySearchService) DeleteMemory(id string) error {
	_, err := s.client.Index("memories").DeleteDocument(id)
	return err
}

func (s *memorySearchService) GenerateSearchToken(groupIDs []uuid.UUID) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	// A user with no groups gets a token that can never match anything
	filterRules := "group_id IN []"
	if len(groupIDs) > 0 {
		quoted := make([]string, len(groupIDs))
		for i, id := range groupIDs {
			quoted[i] = fmt.Sprintf("'%s'", id)
		}
		filterRules = fmt.Sprintf("group_id IN [%s]", strings.Join(quoted, ", "))
	}

	searchRules := map[string]any{
		"memories": map[string]any{
			"filter": filterRules,
		},
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
