// file: service/channel_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"go-tube-api/logger"
	"go-tube-api/model"
	"go-tube-api/repository"
	"strings"
	"time"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrChannelNotFound  = errors.New("channel does not exist")
)

const channelCacheTTL = 10 * time.Minute

// ChannelService computes the public channel profile: subscription
// aggregates plus the viewer-relative subscription flag. The aggregate part
// is served cache-aside; the flag is always computed fresh because it
// depends on the viewer.
type ChannelService struct {
	channelRepo repository.IChannelRepository
	cache       ICacheClient
}

func NewChannelService(channelRepo repository.IChannelRepository, cache ICacheClient) *ChannelService {
	return &ChannelService{channelRepo: channelRepo, cache: cache}
}

func (s *ChannelService) getStats(ctx context.Context, username string) (*model.ChannelStats, error) {
	cacheKey := channelCacheKey(username)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var stats model.ChannelStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.channelRepo.GetChannelStats(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, cacheKey, data, channelCacheTTL)
		}
	}
	return stats, nil
}

// GetChannelProfile returns the public-safe projection for a channel as seen
// by the given viewer.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID int) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrUsernameRequired
	}

	stats, err := s.getStats(ctx, username)
	if err != nil {
		return nil, err
	}

	subscribed, err := s.channelRepo.IsSubscriber(stats.ID, viewerID)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("username", username).Debug("Channel profile assembled")
	return &model.ChannelProfile{
		FullName:          stats.FullName,
		Username:          stats.Username,
		Email:             stats.Email,
		Avatar:            stats.Avatar,
		CoverImage:        stats.CoverImage,
		SubscriberCount:   stats.SubscriberCount,
		SubscribedToCount: stats.SubscribedToCount,
		IsSubscribed:      subscribed,
	}, nil
}

// GetWatchHistory returns the viewer's watched content references, newest
// first.
func (s *ChannelService) GetWatchHistory(userID int) ([]*model.WatchEntry, error) {
	entries, err := s.channelRepo.GetWatchHistory(userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.WatchEntry{}
	}
	return entries, nil
}
