package handler

import (
	"go-tube-api/common"
	"go-tube-api/logger"
	"go-tube-api/model"
	"go-tube-api/service"
	"net/http"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account from a multipart form with an avatar (required) and cover image (optional)
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  common.ApiResponse
// @Failure      400  {object}  common.AppError
// @Failure      409  {object}  common.AppError
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid multipart form", err)
	}

	req := model.RegisterRequest{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	if messages := common.ValidateStruct(req); messages != nil {
		appErr := common.NewAppError(http.StatusBadRequest, "All fields are required", nil)
		appErr.Errors = messages
		return appErr
	}

	avatarPath, err := stageFormFile(r, "avatar")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Failed to stage avatar upload", err)
	}
	coverPath, err := stageFormFile(r, "coverImage")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Failed to stage cover image upload", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"username": req.Username,
		"email":    req.Email,
	}).Info("Register request received")

	user, err := h.userService.Register(r.Context(), req, avatarPath, coverPath)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusCreated, user, "User registered successfully").Send(w)
	return nil
}

// Login godoc
// @Summary      Log in with username or email
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.ApiResponse
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, pair, err := h.authService.Login(req.Username, req.Email, req.Password)
	if err != nil {
		return mapServiceError(err)
	}

	setAuthCookies(w, pair)
	common.NewApiResponse(http.StatusOK, map[string]any{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully").Send(w)
	return nil
}

// Logout clears the stored refresh token and both auth cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	if err := h.authService.Logout(user.ID); err != nil {
		return mapServiceError(err)
	}

	clearAuthCookies(w)
	common.NewApiResponse(http.StatusOK, map[string]any{}, "User logged out").Send(w)
	return nil
}

// RefreshToken exchanges a valid refresh token, from cookie or body, for a
// new token pair. A superseded token is rejected.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	presented := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req model.RefreshRequest
		if !common.ValidateAndDecode(w, r, &req) {
			return nil
		}
		presented = req.RefreshToken
	}
	if presented == "" {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	pair, err := h.authService.RefreshTokens(presented)
	if err != nil {
		return mapServiceError(err)
	}

	setAuthCookies(w, pair)
	common.NewApiResponse(http.StatusOK, pair, "Access token refreshed").Send(w)
	return nil
}

// ChangePassword verifies the old password before storing the new one.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	var req model.ChangePasswordRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.authService.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, map[string]any{}, "Password changed successfully").Send(w)
	return nil
}

// GetCurrentUser returns the session account resolved by the middleware.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	common.NewApiResponse(http.StatusOK, user, "Current user fetched successfully").Send(w)
	return nil
}

// UpdateAccountDetails replaces the display name and email.
func (h *UserHandler) UpdateAccountDetails(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	var req model.UpdateAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	updated, err := h.userService.UpdateAccountDetails(user.ID, req.FullName, req.Email)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, updated, "Account details updated successfully").Send(w)
	return nil
}

// UpdateAvatar accepts a single staged avatar file and swaps the reference.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid multipart form", err)
	}
	avatarPath, err := stageFormFile(r, "avatar")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Failed to stage avatar upload", err)
	}

	updated, err := h.userService.UpdateAvatar(r.Context(), user.ID, avatarPath)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, updated, "Avatar updated successfully").Send(w)
	return nil
}

// UpdateCoverImage accepts a single staged cover file and swaps the
// reference.
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid multipart form", err)
	}
	coverPath, err := stageFormFile(r, "coverImage")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Failed to stage cover image upload", err)
	}

	updated, err := h.userService.UpdateCoverImage(r.Context(), user.ID, coverPath)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, updated, "Cover image updated successfully").Send(w)
	return nil
}
