package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
	"github.com/polkiloo/hubsai/internal/session"
)

// WalletHandler exposes the claim wallet of the signed-in user.
type WalletHandler struct {
	facade ClientFacade
}

func NewWalletHandler(facade ClientFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Get handles GET /api/wallet.
func (h *WalletHandler) Get(c *gin.Context) {
	client, ok := h.signedIn(c)
	if !ok {
		return
	}
	wallet := client.Store.GetClaimWallet(c.Request.Context(), "")
	if wallet == nil {
		writeError(c, domainErrors.ErrNotFound, nil)
		return
	}
	c.JSON(http.StatusOK, dto.WalletResponse{
		Address:           wallet.Address,
		PrivateKeyEncoded: wallet.PrivateKeyEncoded,
		Mnemonic:          wallet.Mnemonic,
		UserID:            wallet.UserID,
		CreatedAt:         wallet.CreatedAt,
	})
}

// Ensure handles POST /api/wallet.
func (h *WalletHandler) Ensure(c *gin.Context) {
	client, ok := h.signedIn(c)
	if !ok {
		return
	}
	h.respondAddress(c, client.Store.EnsureWallet)
}

// Recreate handles POST /api/wallet/recreate.
func (h *WalletHandler) Recreate(c *gin.Context) {
	client, ok := h.signedIn(c)
	if !ok {
		return
	}
	h.respondAddress(c, client.Store.RecreateWallet)
}

// SetupComplete handles POST /api/wallet/setup-complete.
func (h *WalletHandler) SetupComplete(c *gin.Context) {
	client, ok := h.signedIn(c)
	if !ok {
		return
	}
	client.Store.SetWalletSetupComplete(c.Request.Context())
	c.JSON(http.StatusOK, dto.SetupCompleteResponse{WalletSetupComplete: client.Store.HasCompletedWalletSetup()})
}

func (h *WalletHandler) signedIn(c *gin.Context) (*session.Client, bool) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return nil, false
	}
	if client.Store.CurrentUser() == nil {
		writeError(c, domainErrors.ErrNotAuthenticated, nil)
		return nil, false
	}
	return client, true
}

func (h *WalletHandler) respondAddress(c *gin.Context, create func(context.Context) (string, bool)) {
	address, ok := create(c.Request.Context())
	if !ok {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "claim wallet unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.WalletAddressResponse{Address: address})
}
