package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/zhixing/journal/internal/database"
)

// SystemHandlers exposes process and host diagnostics
type SystemHandlers struct {
	db        *database.DB
	dataDir   string
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(db *database.DB, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:        db,
		dataDir:   dataDir,
		startedAt: time.Now().UTC(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleSystemStatus returns host metrics, process info and database stats
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"goVersion":  runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}

	// Best effort: host metrics are informational, failures do not fail the request
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		status["cpuPercent"] = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		status["memory"] = map[string]interface{}{
			"totalMB":     memStat.Total / 1024 / 1024,
			"usedMB":      memStat.Used / 1024 / 1024,
			"usedPercent": memStat.UsedPercent,
		}
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	if info, err := os.Stat(filepath.Join(h.dataDir, "journal.db")); err == nil {
		status["databaseSizeBytes"] = info.Size()
	}

	if stats, err := h.db.GetStats(); err == nil {
		status["database"] = stats
	} else {
		h.log.Warn().Err(err).Msg("Failed to read database stats")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
