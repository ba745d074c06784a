package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ramonehamilton/royale-meta/internal/api/response"
	"github.com/ramonehamilton/royale-meta/internal/storage/models"
)

// SnapshotInfoSource reports the currently published snapshot.
type SnapshotInfoSource interface {
	Current(ctx context.Context) (*models.SnapshotInfo, error)
}

// SystemHandler serves health and snapshot status.
type SystemHandler struct {
	snapshots SnapshotInfoSource
	started   time.Time
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(snapshots SnapshotInfoSource) *SystemHandler {
	return &SystemHandler{snapshots: snapshots, started: time.Now()}
}

// healthStatus is the health endpoint payload. Snapshot is nil until the
// first pipeline run publishes.
type healthStatus struct {
	Status   string               `json:"status"`
	Uptime   string               `json:"uptime"`
	Snapshot *models.SnapshotInfo `json:"snapshot"`
}

// GetHealth handles GET /api/v1/system/health. The server is healthy even
// before a snapshot exists; a failing database degrades the status.
func (h *SystemHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status: "healthy",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	}

	snapshot, err := h.snapshots.Current(r.Context())
	if err != nil {
		status.Status = "degraded"
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status.Snapshot = snapshot

	response.JSON(w, http.StatusOK, status)
}
