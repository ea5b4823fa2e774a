package utilities

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the body of every error response and of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the response body with the given status. A value
// that cannot be encoded turns into a 500 with a message body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(MessageResponse{Message: "Server error"})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}
