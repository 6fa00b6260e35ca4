package syncorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/darazboard/order-sync/internal/service/services/syncsvc"
)

// service is an interface for the service layer.
type service interface {
	RunIncrementalSync(ctx context.Context) error
	RunBackfill(ctx context.Context) error
	AggregateOrders(ctx context.Context) (*syncsvc.AggregateResult, error)
}

// RunSync handles the on-demand incremental sync request.
func RunSync(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.RunIncrementalSync(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error running incremental sync", "error", err)

		return
	}

	writeJSON(w, map[string]string{"message": "Sync completed successfully"})
}

// RunBackfill handles the on-demand backfill request.
func RunBackfill(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.RunBackfill(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error running backfill", "error", err)

		return
	}

	writeJSON(w, map[string]string{"message": "Backfill completed successfully"})
}

// AggregateOrders handles the rolling-window aggregation request.
func AggregateOrders(w http.ResponseWriter, r *http.Request, service service) {
	result, err := service.AggregateOrders(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error aggregating orders", "error", err)

		return
	}

	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
