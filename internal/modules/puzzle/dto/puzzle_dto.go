package dto

import "gorm.io/datatypes"

type CreatePuzzleRequest struct {
	GameType   string            `json:"game_type" binding:"required,oneof=memory logic attention"`
	Name       string            `json:"name" binding:"required,min=2,max=50"`
	Difficulty string            `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Board      datatypes.JSONMap `json:"board"`
}

type ListPuzzlesFilter struct {
	GameType string `form:"game_type" binding:"omitempty,oneof=memory logic attention"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=50"`
}
