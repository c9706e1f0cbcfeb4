package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// errorBody is the JSON error envelope returned to API clients.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		log.Printf("%s: %v", code, err)
	}
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
