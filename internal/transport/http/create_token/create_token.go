package createtoken

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// service is an interface for the service layer.
type service interface {
	CreateAccessToken(ctx context.Context, code string) (json.RawMessage, error)
}

// CreateToken exchanges an authorization code for an access token. The
// marketplace's raw response is passed through to the caller.
func CreateToken(w http.ResponseWriter, r *http.Request, service service) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization code missing", http.StatusBadRequest)

		return
	}

	result, err := service.CreateAccessToken(r.Context(), code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error creating access token", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(result); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
