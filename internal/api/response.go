package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gremialdev/memberflow/internal/models"
)

// fallbackErrorResponse is served when a response value fails to marshal, so
// the client always receives valid JSON. Kept as a static literal matching
// the models.Error envelope.
var fallbackErrorResponse = []byte(`{"status":"error","message":"Internal server error"}`)

// writeJSONResponse marshals response and writes it with the given status.
// The body is marshaled before any header is written so an encoding failure
// can still downgrade the status to 500.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response models.APIResponse) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal JSON response", "error", err)
		jsonData = fallbackErrorResponse
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(jsonData); writeErr != nil {
		slog.Error("Server.writeJSONResponse: failed to write JSON response", "error", writeErr)
	}
}
