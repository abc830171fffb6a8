package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/repository"
	"github.com/anthony-1214/shop-service/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	logger          *zap.Logger
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	sessionID, ok := requireSession(c)
	if !ok {
		return
	}

	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient stock",
			})
		default:
			h.logger.Error("Checkout failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Checkout failed, please retry",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, domain.CheckoutResponse{
		OrderID: order.OrderID,
		Total:   order.Total,
	})
}

func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.checkoutService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}

		h.logger.Error("Failed to get order",
			zap.String("order_id", orderID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get order",
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	orders, err := h.checkoutService.ListOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
