package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/clickcounter/internal/domain/model"
)

// timestampLayout matches JavaScript's Date.toISOString output.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	DB     bool   `json:"db"`
}

// RecordClickResponse is the JSON body of a successful POST /api/click.
type RecordClickResponse struct {
	OK bool `json:"ok"`
}

// ClickResponse is the JSON representation of a click.
type ClickResponse struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
}

func toClickResponse(c model.Click) ClickResponse {
	return ClickResponse{
		ID:        c.ID,
		CreatedAt: c.CreatedAt.UTC().Format(timestampLayout),
	}
}
