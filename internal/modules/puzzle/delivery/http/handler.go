package handler

import (
	"net/http"

	puzzleDto "elepad.app/backend/internal/modules/puzzle/dto"
	puzzle "elepad.app/backend/internal/modules/puzzle/service"
	"elepad.app/backend/pkg/response"
	"elepad.app/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PuzzleHandler struct {
	service puzzle.PuzzleService
}

func NewPuzzleHandler(service puzzle.PuzzleService) *PuzzleHandler {
	return &PuzzleHandler{service: service}
}

func (h *PuzzleHandler) CreatePuzzle(c *gin.Context) {
	var req puzzleDto.CreatePuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	created, err := h.service.CreatePuzzle(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *PuzzleHandler) GetPuzzle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid puzzle id"})
		return
	}

	found, err := h.service.GetPuzzle(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *PuzzleHandler) ListPuzzles(c *gin.Context) {
	var filter puzzleDto.ListPuzzlesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	puzzles, err := h.service.ListPuzzles(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, puzzles)
}
