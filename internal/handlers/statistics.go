package handlers

import (
	"net/http"
	"strconv"

	"finance-tracker/internal/chart"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
)

const (
	chartWidth  = 640.0
	chartHeight = 320.0
)

// StatsCategoryItem represents a category with its spending statistics.
type StatsCategoryItem struct {
	models.CategoryShare
	CategoryStyle CategoryStyle
}

// StatsViewModel is the data passed to the chart view template.
type StatsViewModel struct {
	Month      MonthNav
	AllTime    bool
	Total      models.Money
	Categories []StatsCategoryItem
	Chart      chart.SVG
}

// Statistics renders the expense-by-category chart for a month, or for
// every expense with ?range=all.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	nav := h.monthFromQuery(r)
	allTime := r.URL.Query().Get("range") == "all"
	rng := nav.Range
	if allTime {
		rng = models.DateRange{}
	}

	rows, err := h.svc.Breakdown(r.Context(), user.ID, rng)
	if err != nil {
		h.logger(r).Error("load breakdown", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var total models.Money
	items := make([]StatsCategoryItem, 0, len(rows))
	for _, row := range rows {
		total += row.Total
		items = append(items, StatsCategoryItem{
			CategoryShare: row,
			CategoryStyle: getCategoryStyle(row.Category),
		})
	}

	h.render(w, r, "stats.html", StatsViewModel{
		Month:      nav,
		AllTime:    allTime,
		Total:      total,
		Categories: items,
		Chart:      chart.Layout(chart.Build(rows), chartWidth, chartHeight),
	})
}

func parseIntParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(name))
}
