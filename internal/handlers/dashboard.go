package handlers

import (
	"context"
	"net/http"
	"time"

	"shop-insights/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	dashboardName = "Shop Insights"
)

func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(dashboardName, Panels()).Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
