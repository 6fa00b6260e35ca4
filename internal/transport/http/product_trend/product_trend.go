package producttrend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/darazboard/order-sync/internal/service/models/trend"
)

// service is an interface for the service layer.
type service interface {
	GetProductTrend(ctx context.Context) ([]trend.ProductTrend, error)
}

// response wraps the trend list the way the dashboard expects it.
type response struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []trend.ProductTrend `json:"data"`
}

// GetProductTrend handles the product movement trend request.
func GetProductTrend(w http.ResponseWriter, r *http.Request, service service) {
	trends, err := service.GetProductTrend(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting product trend", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response{
		Success: true,
		Count:   len(trends),
		Data:    trends,
	}); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
