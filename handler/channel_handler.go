// file: handler/channel_handler.go

package handler

import (
	"go-tube-api/common"
	"go-tube-api/service"
	"net/http"
)

type ChannelHandler struct {
	channelService *service.ChannelService
}

func NewChannelHandler(channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// GetChannelProfile godoc
// @Summary      Get a channel's public profile
// @Description  Subscriber counts and the viewer-relative subscription flag for a channel
// @Tags         channels
// @Produce      json
// @Param        username  path  string  true  "Channel username"
// @Success      200  {object}  common.ApiResponse
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/v1/users/c/{username} [get]
func (h *ChannelHandler) GetChannelProfile(w http.ResponseWriter, r *http.Request) *common.AppError {
	viewer, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	profile, err := h.channelService.GetChannelProfile(r.Context(), r.PathValue("username"), viewer.ID)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, profile, "Channel profile fetched successfully").Send(w)
	return nil
}

// GetWatchHistory returns the viewer's watched content references, newest
// first.
func (h *ChannelHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) *common.AppError {
	viewer, ok := CurrentUser(r)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized request", nil)
	}

	history, err := h.channelService.GetWatchHistory(viewer.ID)
	if err != nil {
		return mapServiceError(err)
	}

	common.NewApiResponse(http.StatusOK, history, "Watch history fetched successfully").Send(w)
	return nil
}
