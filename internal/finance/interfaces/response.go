package interfaces

import (
	"encoding/json"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// RespondError writes {"error": message} plus optional per-field details.
func RespondError(w http.ResponseWriter, status int, message string, details ...map[string][]string) {
	payload := map[string]interface{}{
		"error": message,
	}

	if len(details) > 0 && len(details[0]) > 0 {
		payload["details"] = details[0]
	}

	RespondJSON(w, status, payload)
}
