package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/service"
)

// PersonalityHandler mantiene dependencias para los endpoints de perfil.
type PersonalityHandler struct {
	logger         *zap.Logger
	personalitySvc *service.PersonalityService
	memorySvc      *service.MemoryService
}

func NewPersonalityHandler(logger *zap.Logger, personalitySvc *service.PersonalityService, memorySvc *service.MemoryService) *PersonalityHandler {
	return &PersonalityHandler{
		logger:         logger,
		personalitySvc: personalitySvc,
		memorySvc:      memorySvc,
	}
}

// ProcessSession maneja POST /api/sessions/process.
func (h *PersonalityHandler) ProcessSession(c *gin.Context) {
	var req struct {
		UserID     string                  `json:"user_id" binding:"required"`
		Transcript []domain.TranscriptLine `json:"transcript" binding:"required"`
		Summary    string                  `json:"summary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid process session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	snapshot, err := h.personalitySvc.ProcessSession(c.Request.Context(), req.UserID, req.Transcript, req.Summary)
	if err != nil {
		if errors.Is(err, domain.ErrEvidenceUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "evidence extraction unavailable"})
			return
		}
		h.logger.Error("process session failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process session"})
		return
	}

	// Las líneas del usuario también alimentan el recall semántico. Es
	// best effort: un fallo de embedding no invalida la actualización de
	// perfil ya persistida.
	if h.memorySvc != nil {
		for _, line := range req.Transcript {
			if !strings.EqualFold(strings.TrimSpace(line.Speaker), "user") {
				continue
			}
			if _, err := h.memorySvc.StoreMessage(c.Request.Context(), req.UserID, line.Content); err != nil {
				h.logger.Warn("transcript memory store failed", zap.String("user_id", req.UserID), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"personality_update": snapshot})
}

// GetInsights maneja GET /api/personality/:user_id.
func (h *PersonalityHandler) GetInsights(c *gin.Context) {
	userID := c.Param("user_id")

	insights, err := h.personalitySvc.GetInsights(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get personality insights failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get personality insights"})
		return
	}

	c.JSON(http.StatusOK, insights)
}

// GetType maneja GET /api/personality/:user_id/type.
func (h *PersonalityHandler) GetType(c *gin.Context) {
	userID := c.Param("user_id")

	insights, err := h.personalitySvc.GetInsights(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get personality type failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get personality type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mbti_type":          insights.MBTIType,
		"type_description":   insights.TypeDescription,
		"overall_confidence": insights.Confidence.Overall,
		"sessions_analyzed":  insights.SessionsAnalyzed,
	})
}

// GetFacets maneja GET /api/personality/:user_id/facets.
func (h *PersonalityHandler) GetFacets(c *gin.Context) {
	userID := c.Param("user_id")

	insights, err := h.personalitySvc.GetInsights(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get personality facets failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get personality facets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"facet_bars": insights.FacetBars})
}

// ResetUser maneja POST /api/users/:user_id/reset.
func (h *PersonalityHandler) ResetUser(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.personalitySvc.Reset(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no personality profile for user"})
			return
		}
		h.logger.Error("reset personality failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset personality"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
