package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"gorm.io/gorm"
)

// Status is the health check response body.
type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DB        struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	} `json:"db"`
}

// Check returns a handler that reports whether the database connection is
// usable.
func Check(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := Status{
			Status:    "ok",
			Timestamp: time.Now(),
		}

		sqlDB, err := db.DB()
		if err != nil {
			status.Status = "degraded"
			status.DB.Status = "error"
			status.DB.Message = "failed to get database connection"
			writeStatus(w, status, http.StatusServiceUnavailable)
			return
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			status.Status = "degraded"
			status.DB.Status = "error"
			status.DB.Message = "database ping failed"
			writeStatus(w, status, http.StatusServiceUnavailable)
			return
		}

		status.DB.Status = "ok"
		writeStatus(w, status, http.StatusOK)
	}
}

func writeStatus(w http.ResponseWriter, status Status, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
