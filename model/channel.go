// file: model/channel.go

package model

import "time"

// ChannelStats is the viewer-independent aggregate for a channel. It is the
// unit that gets cached; the viewer-relative subscription flag is always
// computed fresh.
type ChannelStats struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscriberCount   int    `json:"subscriberCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
}

// ChannelProfile is the public projection returned to clients.
type ChannelProfile struct {
	FullName          string `json:"fullName"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscriberCount   int    `json:"subscriberCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// WatchEntry is one item of a user's watch history, newest first.
type WatchEntry struct {
	VideoID   string    `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}
