package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
	"github.com/polkiloo/hubsai/internal/session"
)

// AuthHandler processes sign-up, sign-in and sign-out.
type AuthHandler struct {
	facade ClientFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade ClientFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.AuthResult{Error: domainErrors.MsgInvalidInput})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}

	res := client.Store.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	respondResult(c, res)
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.AuthResult{Error: domainErrors.MsgInvalidInput})
		return
	}
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}

	res := client.Store.SignIn(c.Request.Context(), req.Email, req.Password)
	respondResult(c, res)
}

// SignOut handles POST /api/auth/signout. The onboarding flow and dashboard
// return to their initial state.
func (h *AuthHandler) SignOut(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	client.Store.SignOut(c.Request.Context())
	client.Flow.Reset()
	client.Dashboard.Reset()
	c.JSON(http.StatusOK, client.Store.Snapshot())
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	client, ok := currentClient(c, h.facade)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Store.Snapshot())
}

func respondResult(c *gin.Context, res session.Result) {
	body := dto.AuthResult{Success: res.Success, User: res.User, Error: res.Error}
	if res.Success {
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(statusFor(res.Err), body)
}
