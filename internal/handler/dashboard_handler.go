package handler

import (
	"net/http"

	"financial-ledger/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Summary handles GET /api/dashboard/summary. It accepts the same filter
// parameters as the transaction list, so the tiles always agree with the
// filtered table.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.Summarize(filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, summary)
}
