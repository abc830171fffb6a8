package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/service"
)

type ImportHandler struct {
	importService *service.ImportService
	logger        *zap.Logger
}

func NewImportHandler(importService *service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// BatchInsert takes the raw request body as the JSON payload, so the
// importer sees exactly what the caller pasted.
func (h *ImportHandler) BatchInsert(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Empty payload",
		})
		return
	}

	count, err := h.importService.Import(c.Request.Context(), string(raw))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedJSON),
			errors.Is(err, service.ErrInvalidShape),
			errors.Is(err, service.ErrInvalidElement):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			h.logger.Error("Batch insert failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Batch insert failed",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"inserted_count": count})
}

type batchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *ImportHandler) BatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	count, err := h.importService.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		h.logger.Error("Batch delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Batch delete failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_count": count})
}

func (h *ImportHandler) ListDocuments(c *gin.Context) {
	docs, err := h.importService.ListDocuments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list documents",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}
