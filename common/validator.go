package common

import (
	"encoding/json"
	"go-tube-api/config"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs struct validation on an already-populated payload,
// e.g. one assembled from multipart form fields.
func ValidateStruct(payload interface{}) []string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var messages []string
	for _, ve := range err.(validator.ValidationErrors) {
		messages = append(messages, ve.Error())
	}
	return messages
}

// ValidateAndDecode decodes a JSON body into payload and runs struct
// validation. The body is capped at the configured limit before decoding.
// On failure it writes the error envelope and returns false.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	limit := config.AppConfig.Server.BodyLimitKB
	if limit <= 0 {
		limit = 16
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit<<10)

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		NewAppError(http.StatusBadRequest, "Invalid request body", err).Send(w)
		return false
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		appErr := NewAppError(http.StatusBadRequest, "Validation failed", nil)
		for _, ve := range validationErrors {
			appErr.Errors = append(appErr.Errors, ve.Error())
		}
		appErr.Send(w)
		return false
	}

	return true
}
