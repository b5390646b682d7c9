// handler/main_test.go
package handler

import (
	"go-tube-api/config"
	"go-tube-api/logger"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	logger.Init()

	config.AppConfig.JWT.AccessSecret = "test-access-secret"
	config.AppConfig.JWT.RefreshSecret = "test-refresh-secret"
	config.AppConfig.JWT.AccessTTL = 15 * time.Minute
	config.AppConfig.JWT.RefreshTTL = 24 * time.Hour
	config.AppConfig.Server.BodyLimitKB = 16
	config.AppConfig.Server.UploadTempDir = os.TempDir()

	os.Exit(m.Run())
}
