// file: repository/channel_repository_test.go

package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newMockChannelRepo(t *testing.T) (*ChannelRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("could not create sqlmock: %v", err)
	}
	return NewChannelRepository(db), mock, func() { db.Close() }
}

func TestChannelRepository_GetChannelStats(t *testing.T) {
	t.Run("returns both counts", func(t *testing.T) {
		repo, mock, closeFn := newMockChannelRepo(t)
		defer closeFn()

		rows := sqlmock.NewRows([]string{"id", "full_name", "username", "email",
			"avatar", "cover_image", "subscriber_count", "subscribed_to_count"}).
			AddRow(20, "Jane Doe", "janedoe", "jane@example.com", "a.png", "c.png", 3, 1)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.username = $1`)).
			WithArgs("janedoe").
			WillReturnRows(rows)

		stats, err := repo.GetChannelStats("janedoe")
		assert.NoError(t, err)
		assert.Equal(t, 3, stats.SubscriberCount)
		assert.Equal(t, 1, stats.SubscribedToCount)
		assert.Equal(t, 20, stats.ID)
	})

	t.Run("unknown username", func(t *testing.T) {
		repo, mock, closeFn := newMockChannelRepo(t)
		defer closeFn()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.username = $1`)).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetChannelStats("ghost")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestChannelRepository_IsSubscriber(t *testing.T) {
	repo, mock, closeFn := newMockChannelRepo(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(20, 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	subscribed, err := repo.IsSubscriber(20, 7)
	assert.NoError(t, err)
	assert.True(t, subscribed)
}

func TestChannelRepository_GetWatchHistory(t *testing.T) {
	repo, mock, closeFn := newMockChannelRepo(t)
	defer closeFn()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"video_id", "watched_at"}).
		AddRow("v2", now).
		AddRow("v1", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM watch_history`)).
		WithArgs(7).
		WillReturnRows(rows)

	entries, err := repo.GetWatchHistory(7)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "v2", entries[0].VideoID)
}
