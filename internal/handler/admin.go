package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"vendmatic-rest-api/internal/repository"
	"vendmatic-rest-api/internal/service"
	"vendmatic-rest-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	repo      repository.VendingRepository
	purchases *service.PurchaseService
	dbType    string // Database type: sqlite, postgres, or mysql
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	repo repository.VendingRepository,
	purchases *service.PurchaseService,
	dbType string,
) *AdminHandler {
	return &AdminHandler{
		repo:      repo,
		purchases: purchases,
		dbType:    dbType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	// Database stats
	if h.repo != nil {
		dbStats, err := h.repo.Stats(ctx)
		if err == nil {
			dbStats["status"] = "connected"
			stats["database"] = dbStats
		} else {
			stats["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// GetPurchases handles GET /api/v1/admin/purchases?limit=N
func (h *AdminHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	purchases, err := h.purchases.RecentPurchases(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"purchases": purchases,
		"count":     len(purchases),
	})
}
