// file: common/response.go

package common

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the success envelope shared by all endpoints.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewApiResponse(code int, data any, message string) *ApiResponse {
	return &ApiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < 400,
	}
}

func (r *ApiResponse) Send(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}
