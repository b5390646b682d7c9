package handler

import (
	"errors"
	"go-tube-api/common"
	"go-tube-api/service"
	"net/http"
)

// ErrorHandlingMiddleware converts a handler's returned AppError into the
// JSON error envelope. Handlers never write errors themselves.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// mapServiceError translates service sentinel errors into transport status
// codes. Unknown errors become an opaque 500.
func mapServiceError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrFieldsRequired),
		errors.Is(err, service.ErrIdentifierRequired),
		errors.Is(err, service.ErrAvatarRequired),
		errors.Is(err, service.ErrCoverImageRequired),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrUsernameRequired):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrRefreshTokenMismatch):
		return common.NewAppError(http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChannelNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrUserExists):
		return common.NewAppError(http.StatusConflict, err.Error(), nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Something went wrong", err)
	}
}
