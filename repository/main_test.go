// file: repository/main_test.go

package repository

import (
	"go-tube-api/logger"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
