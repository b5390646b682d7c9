package handler

import (
	"context"
	"database/sql"
	"go-tube-api/common"
	"go-tube-api/model"
	"go-tube-api/repository"
	"go-tube-api/service"
	"net/http"
	"strings"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// AuthMiddleware resolves the acting account for protected routes. The
// credential is taken from the accessToken cookie first, then from the
// Authorization header. The resolved projection excludes password and
// refresh token. Pure read + attach; state is never mutated here.
type AuthMiddleware struct {
	auth     *service.AuthService
	userRepo repository.IUserRepository
}

func NewAuthMiddleware(auth *service.AuthService, userRepo repository.IUserRepository) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, userRepo: userRepo}
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return ""
	}
	return headerParts[1]
}

func (m *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil).Send(w)
			return
		}

		claims, err := m.auth.VerifyAccessToken(tokenString)
		if err != nil {
			common.NewAppError(http.StatusUnauthorized, "Invalid or expired access token", nil).Send(w)
			return
		}

		user, err := m.userRepo.GetPublicByID(claims.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				common.NewAppError(http.StatusUnauthorized, "Invalid access token", nil).Send(w)
				return
			}
			common.NewAppError(http.StatusInternalServerError, "Something went wrong", err).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the account the middleware attached to the request.
func CurrentUser(r *http.Request) (*model.User, bool) {
	user, ok := r.Context().Value(currentUserKey).(*model.User)
	return user, ok
}
