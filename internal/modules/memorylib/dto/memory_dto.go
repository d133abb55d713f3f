package dto

import "time"

// CreateMemoryRequest is bound from the multipart form alongside the file part.
type CreateMemoryRequest struct {
	GroupID string     `form:"group_id" binding:"required,uuid"`
	Title   string     `form:"title" binding:"required,min=1,max=150"`
	Caption *string    `form:"caption" binding:"omitempty,max=2000"`
	TakenAt *time.Time `form:"taken_at" binding:"omitempty" time_format:"2006-01-02"`
}

type ListMemoriesFilter struct {
	GroupID   string  `form:"group_id" binding:"required,uuid"`
	MediaType *string `form:"media_type" binding:"omitempty,oneof=image audio video"`
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset    int     `form:"offset,default=0" binding:"omitempty,min=0"`
}

type SearchTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
