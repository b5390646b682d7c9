// file: app/testapp.go

package app

import (
	"database/sql"
	"go-tube-api/storage"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// TestApp exposes the fully wired router plus its backing connections for
// integration tests.
type TestApp struct {
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

// NewTestApp wires all layers against caller-supplied dependencies. Tests
// typically pass a stub MediaStorage so no bucket is needed.
func NewTestApp(database *sql.DB, redisClient *redis.Client, media storage.MediaStorage) *TestApp {
	return &TestApp{
		DB:     database,
		Redis:  redisClient,
		Router: buildRouter(database, redisClient, media),
	}
}
