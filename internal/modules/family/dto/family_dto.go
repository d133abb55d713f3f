package dto

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required,min=6,max=12"`
}
