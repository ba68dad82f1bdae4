package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/server/http/dto"
)

// OrderHandler exposes the mocked order lookup and analytics events.
type OrderHandler struct {
	facade ClientFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade ClientFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Lookup handles GET /api/orders/lookup?email=.
func (h *OrderHandler) Lookup(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}

	order := client.Store.LookupShopifyOrder(c.Request.Context(), email)
	c.JSON(http.StatusOK, dto.OrderLookupResponse{Found: order != nil, Order: order})
}

// Track handles POST /api/events.
func (h *OrderHandler) Track(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "event is required"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	client.Store.TrackEvent(c.Request.Context(), req.Event, req.Properties)
	c.Status(http.StatusAccepted)
}
