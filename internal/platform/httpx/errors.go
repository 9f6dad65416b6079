package httpx

import (
	"errors"
	"net/http"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

const internalMessage = "erro interno do servidor"

// RespondError translates domain errors into the HTTP error taxonomy:
// 401 authentication, 403 authorization, 404 lookup miss, 400 validation,
// 429 usage caps, 500 everything unexpected.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrTokenInvalid),
		errors.Is(err, shared.ErrRefreshExpired),
		errors.Is(err, shared.ErrRefreshInvalid),
		errors.Is(err, shared.ErrRefreshMissing),
		errors.Is(err, shared.ErrIdentityNotFound):
		Message(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrEmailNotVerified),
		errors.Is(err, shared.ErrForbidden),
		errors.Is(err, shared.ErrInsufficientLevel),
		errors.Is(err, shared.ErrInsufficientPermissions):
		Message(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrEmailTaken),
		errors.Is(err, shared.ErrOneTimeTokenInvalid),
		errors.Is(err, shared.ErrAlreadyFavorited),
		errors.Is(err, shared.ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrUsageLimited):
		Message(w, http.StatusTooManyRequests, err.Error())
	default:
		Message(w, http.StatusInternalServerError, internalMessage)
	}
}
