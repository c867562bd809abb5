package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/service"
)

// MemoryHandler mantiene dependencias para los endpoints de memoria.
type MemoryHandler struct {
	logger    *zap.Logger
	memorySvc *service.MemoryService
}

func NewMemoryHandler(logger *zap.Logger, memorySvc *service.MemoryService) *MemoryHandler {
	return &MemoryHandler{
		logger:    logger,
		memorySvc: memorySvc,
	}
}

// StoreMessage maneja POST /api/memory.
func (h *MemoryHandler) StoreMessage(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid store memory request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.memorySvc.StoreMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		h.writeMemoryError(c, "store memory failed", req.UserID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message_id": id.String(), "user_id": req.UserID})
}

// FindSimilar maneja GET /api/memory/:user_id/similar.
func (h *MemoryHandler) FindSimilar(c *gin.Context) {
	userID := c.Param("user_id")
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid k"})
			return
		}
		k = parsed
	}

	matches, err := h.memorySvc.FindSimilar(c.Request.Context(), userID, query, k)
	if err != nil {
		h.writeMemoryError(c, "find similar failed", userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":          userID,
		"similar_messages": matches,
		"total_found":      len(matches),
	})
}

// EmotionalInsights maneja GET /api/memory/:user_id/insights.
func (h *MemoryHandler) EmotionalInsights(c *gin.Context) {
	userID := c.Param("user_id")

	insights, err := h.memorySvc.EmotionalInsights(c.Request.Context(), userID, nil)
	if err != nil {
		h.writeMemoryError(c, "emotional insights failed", userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":            userID,
		"emotional_messages": insights,
		"total_found":        len(insights),
	})
}

// Stats maneja GET /api/memory/:user_id/stats.
func (h *MemoryHandler) Stats(c *gin.Context) {
	userID := c.Param("user_id")
	c.JSON(http.StatusOK, h.memorySvc.Stats(c.Request.Context(), userID))
}

func (h *MemoryHandler) writeMemoryError(c *gin.Context, msg, userID string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmbeddingFailed):
		h.logger.Warn(msg, zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "embedding generation failed"})
	case errors.Is(err, domain.ErrIndexUnavailable):
		h.logger.Warn(msg, zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vector index unavailable"})
	default:
		h.logger.Error(msg, zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "memory operation failed"})
	}
}
