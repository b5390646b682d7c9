package router

import (
	"go-tube-api/common"
	"go-tube-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-tube-api/docs"
)

func NewRouter(userHandler *handler.UserHandler, channelHandler *handler.ChannelHandler, authMw *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Public routes
	mux.Handle("POST /api/v1/users/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /api/v1/users/login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /api/v1/users/refresh-token", handler.ErrorHandlingMiddleware(userHandler.RefreshToken))

	// Secured routes
	secured := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return authMw.Handle(handler.ErrorHandlingMiddleware(h))
	}
	mux.Handle("POST /api/v1/users/logout", secured(userHandler.Logout))
	mux.Handle("POST /api/v1/users/change-password", secured(userHandler.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", secured(userHandler.GetCurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", secured(userHandler.UpdateAccountDetails))
	mux.Handle("PATCH /api/v1/users/avatar", secured(userHandler.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", secured(userHandler.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/c/{username}", secured(channelHandler.GetChannelProfile))
	mux.Handle("GET /api/v1/users/history", secured(channelHandler.GetWatchHistory))

	// Staged public assets
	mux.Handle("GET /public/", http.StripPrefix("/public/", http.FileServer(http.Dir("./public"))))

	return mux
}
