package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/service"
)

// SessionHeader carries the caller's session id. Session issuance and
// cookie transport live in the layer above this service.
const SessionHeader = "X-Session-ID"

type CartHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
}

func NewCartHandler(cartService *service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

func (h *CartHandler) ViewCart(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	cart, err := h.cartService.View(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}

	c.JSON(http.StatusOK, domain.CartResponse{
		SessionID: cart.SessionID,
		Lines:     cart.Lines,
		TotalQty:  cart.TotalQty(),
	})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req domain.CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.cartService.Add(c.Request.Context(), sessionID, req.ProductID); err != nil {
		h.logger.Error("Failed to add cart line",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), sessionID, c.Param("id")); err != nil {
		h.logger.Error("Failed to remove cart line",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *CartHandler) SetQty(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req domain.SetQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.cartService.SetQty(c.Request.Context(), sessionID, c.Param("id"), req.Qty); err != nil {
		h.logger.Error("Failed to set cart qty",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func requireSession(c *gin.Context) (string, bool) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing " + SessionHeader + " header",
		})
		return "", false
	}
	return id, true
}
