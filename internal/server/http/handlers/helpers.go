package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/hubsai/internal/dashboard"
	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/onboarding"
	"github.com/polkiloo/hubsai/internal/server/http/dto"
	"github.com/polkiloo/hubsai/internal/server/http/middleware"
	"github.com/polkiloo/hubsai/internal/session"
)

// currentClient loads the client of the request or aborts with 500.
func currentClient(c *gin.Context, facade ClientFacade) (*session.Client, bool) {
	client, err := facade.Client(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return nil, false
	}
	return client, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var profileErr *domainErrors.ProfileSetupError
	switch {
	case errors.As(err, &profileErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidCredentials),
		errors.Is(err, domainErrors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrTransitionNotAllowed):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrTransferUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, onboarding.ErrWalletUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, status int) string {
	var profileErr *domainErrors.ProfileSetupError
	if errors.As(err, &profileErr) {
		return profileErr.Error()
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// writeError responds with the mapped status. state, when non-nil, is the
// state left in place by the failed call.
func writeError(c *gin.Context, err error, state any) {
	status := statusFor(err)
	c.JSON(status, dto.ErrorResponse{Error: messageFor(err, status), State: state})
}
