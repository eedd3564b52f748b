package models

// MenuStats holds the per-item slice of a day's statistics.
type MenuStats struct {
	Count   int64 `json:"count"`
	Revenue int64 `json:"revenue"`
	Price   int64 `json:"price"`
}

// DailyStats is the per-calendar-day statistics record kept under
// statistics/daily/<YYYY-MM-DD>. It is created implicitly by the first
// order of the day and only ever grows.
type DailyStats struct {
	TotalOrders  int64                `json:"total_orders"`
	TotalRevenue int64                `json:"total_revenue"`
	ByMenu       map[string]MenuStats `json:"by_menu"`
}

// EmptyDailyStats returns the zero-valued record used before any order
// has been placed on a given day.
func EmptyDailyStats() DailyStats {
	return DailyStats{ByMenu: map[string]MenuStats{}}
}
