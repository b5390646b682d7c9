// file: repository/channel_repository.go

package repository

import (
	"database/sql"
	"go-tube-api/logger"
	"go-tube-api/model"
)

// IChannelRepository defines the contract for subscription aggregates and
// watch history reads. Subscription edges are consumed here, never written.
type IChannelRepository interface {
	GetChannelStats(username string) (*model.ChannelStats, error)
	IsSubscriber(channelID, subscriberID int) (bool, error)
	GetWatchHistory(userID int) ([]*model.WatchEntry, error)
}

// ChannelRepository implements IChannelRepository.
type ChannelRepository struct {
	DB *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{DB: db}
}

// GetChannelStats computes both subscription counts for a channel in a
// single query. Returns sql.ErrNoRows if the username matches no account.
func (r *ChannelRepository) GetChannelStats(username string) (*model.ChannelStats, error) {
	log := logger.Log.WithField("username", username)
	log.Info("Executing query to get channel stats")

	stats := &model.ChannelStats{}
	query := `
		SELECT u.id, u.full_name, u.username, u.email, u.avatar, u.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscriber_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count
		FROM users u
		WHERE u.username = $1`
	err := r.DB.QueryRow(query, username).Scan(&stats.ID, &stats.FullName,
		&stats.Username, &stats.Email, &stats.Avatar, &stats.CoverImage,
		&stats.SubscriberCount, &stats.SubscribedToCount)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute channel stats query")
		}
		return nil, err
	}
	return stats, nil
}

// IsSubscriber reports whether subscriberID has a subscription edge to
// channelID.
func (r *ChannelRepository) IsSubscriber(channelID, subscriberID int) (bool, error) {
	var subscribed bool
	query := `SELECT EXISTS (
		SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)`
	err := r.DB.QueryRow(query, channelID, subscriberID).Scan(&subscribed)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute subscription membership query")
		return false, err
	}
	return subscribed, nil
}

// GetWatchHistory returns a user's watched content references, newest first.
func (r *ChannelRepository) GetWatchHistory(userID int) ([]*model.WatchEntry, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get watch history")

	query := `SELECT video_id, watched_at FROM watch_history
		WHERE user_id = $1 ORDER BY watched_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute watch history query")
		return nil, err
	}
	defer rows.Close()

	var entries []*model.WatchEntry
	for rows.Next() {
		var e model.WatchEntry
		if err := rows.Scan(&e.VideoID, &e.WatchedAt); err != nil {
			log.WithError(err).Error("Failed to scan watch history row")
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
