package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/domain/model"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
)

// DashboardHandler serves the dashboard view of the client.
type DashboardHandler struct {
	facade ClientFacade
}

func NewDashboardHandler(facade ClientFacade) *DashboardHandler {
	return &DashboardHandler{facade: facade}
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Dashboard.Snapshot(c.Request.Context()))
}

// SelectTab handles PUT /api/dashboard/tab.
func (h *DashboardHandler) SelectTab(c *gin.Context) {
	var req dto.TabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "tab is required"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	if err := client.Dashboard.SelectTab(c.Request.Context(), req.Tab); err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, client.Dashboard.Snapshot(c.Request.Context()))
}

// Stake handles POST /api/dashboard/nfts/:id/stake.
func (h *DashboardHandler) Stake(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	res, err := client.Dashboard.Stake(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Unstake handles POST /api/dashboard/nfts/:id/unstake.
func (h *DashboardHandler) Unstake(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	res, err := client.Dashboard.Unstake(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Transfer handles POST /api/dashboard/nfts/:id/transfer.
func (h *DashboardHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "toAddress is required"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := client.Dashboard.Transfer(c.Request.Context(), id, req.ToAddress); err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusAccepted, dto.TransferResponse{NFTID: id, ToAddress: req.ToAddress})
}

// UpdateSettings handles PUT /api/dashboard/settings.
func (h *DashboardHandler) UpdateSettings(c *gin.Context) {
	var req model.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid settings"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	if err := client.Dashboard.UpdateSettings(c.Request.Context(), req); err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, client.Dashboard.Settings())
}
