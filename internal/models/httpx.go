package models

import (
	"encoding/json"
	"net/http"
)

// ErrorBody — тело ответа об ошибке.
type ErrorBody struct {
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Message: msg})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
