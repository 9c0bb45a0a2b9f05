package audit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/response"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("audit.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.handler")
	}
	return &Handler{repo: repo, logger: l}
}

type entryResponse struct {
	ID            string `json:"id"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	Action        string `json:"action"`
	ActorID       string `json:"actor_id,omitempty"`
	Before        string `json:"before,omitempty"`
	After         string `json:"after,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func (h *Handler) ListByEntity(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	if entityType == "" || entityID == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "entity_type and entity_id are required", nil)
		return
	}

	entries, err := h.repo.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		h.logger.Error("list audit entries failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			ID:            e.ID.String(),
			EntityType:    e.EntityType,
			EntityID:      e.EntityID,
			Action:        e.Action,
			ActorID:       e.ActorID,
			Before:        string(e.Before),
			After:         string(e.After),
			CorrelationID: e.CorrelationID,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		}
	}

	response.Success(c, http.StatusOK, resp, nil)
}
