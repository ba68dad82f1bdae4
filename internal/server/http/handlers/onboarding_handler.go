package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/onboarding"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
)

// OnboardingHandler drives the onboarding wizard of the client.
type OnboardingHandler struct {
	facade ClientFacade
}

func NewOnboardingHandler(facade ClientFacade) *OnboardingHandler {
	return &OnboardingHandler{facade: facade}
}

// Get handles GET /api/onboarding.
func (h *OnboardingHandler) Get(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Flow.Snapshot())
}

// Start handles POST /api/onboarding/start.
func (h *OnboardingHandler) Start(c *gin.Context) {
	var req dto.StartRequest
	if !bindOptional(c, &req) {
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Flow.Start(req.SkipLogin))
}

// Next handles POST /api/onboarding/next.
func (h *OnboardingHandler) Next(c *gin.Context) {
	var req dto.NextRequest
	if !bindOptional(c, &req) {
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	snap, err := client.Flow.Next(c.Request.Context(), req.Profile)
	respondStep(c, snap, err)
}

// Skip handles POST /api/onboarding/skip.
func (h *OnboardingHandler) Skip(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	snap, err := client.Flow.Skip(c.Request.Context())
	respondStep(c, snap, err)
}

// Back handles POST /api/onboarding/back.
func (h *OnboardingHandler) Back(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	snap, err := client.Flow.Back(c.Request.Context())
	respondStep(c, snap, err)
}

// Reset handles POST /api/onboarding/reset.
func (h *OnboardingHandler) Reset(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	client.Dashboard.Reset()
	c.JSON(http.StatusOK, client.Flow.Reset())
}

// ExternalWallet handles POST /api/onboarding/external-wallet.
func (h *OnboardingHandler) ExternalWallet(c *gin.Context) {
	var req dto.ExternalWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid wallet signal"})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Flow.ObserveExternalWallet(c.Request.Context(), req.Connected, req.PublicKey))
}

func respondStep(c *gin.Context, snap onboarding.Snapshot, err error) {
	if err != nil {
		writeError(c, err, snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, out any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
