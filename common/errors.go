package common

import (
	"encoding/json"
	"go-tube-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the structured error returned by every operation boundary.
// It serializes to the API error envelope; the wrapped internal error is
// logged but never sent to the client.
type AppError struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
	Err        error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		StatusCode: code,
		Data:       nil,
		Message:    message,
		Success:    false,
		Errors:     []string{},
		Err:        err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.StatusCode,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.StatusCode)
	json.NewEncoder(w).Encode(e)
}
