package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RevenueWindow string

const (
	RevenueAll       RevenueWindow = "all"
	RevenueToday     RevenueWindow = "today"
	RevenueYesterday RevenueWindow = "yesterday"
	RevenueThisMonth RevenueWindow = "this_month"
	RevenueLastMonth RevenueWindow = "last_month"
)

func (w RevenueWindow) Valid() bool {
	switch w {
	case RevenueAll, RevenueToday, RevenueYesterday, RevenueThisMonth, RevenueLastMonth:
		return true
	}
	return false
}

// Bounds returns the half-open interval [start, end) of the window in now's location.
// bounded is false for RevenueAll.
func (w RevenueWindow) Bounds(now time.Time) (start, end time.Time, bounded bool) {
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	thisMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	switch w {
	case RevenueToday:
		return today, today.AddDate(0, 0, 1), true
	case RevenueYesterday:
		return today.AddDate(0, 0, -1), today, true
	case RevenueThisMonth:
		return thisMonth, thisMonth.AddDate(0, 1, 0), true
	case RevenueLastMonth:
		return thisMonth.AddDate(0, -1, 0), thisMonth, true
	}
	return time.Time{}, time.Time{}, false
}

// Contains reports whether t falls inside the window evaluated at now.
func (w RevenueWindow) Contains(t, now time.Time) bool {
	start, end, bounded := w.Bounds(now)
	if !bounded {
		return true
	}
	t = t.In(now.Location())
	return !t.Before(start) && t.Before(end)
}

type Revenue struct {
	Window     RevenueWindow   `json:"window"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	OrderCount int             `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

// SumRevenue totals received orders created inside the window.
func SumRevenue(orders []Order, window RevenueWindow, now time.Time) Revenue {
	rev := Revenue{Window: window, Total: decimal.Zero}
	if start, end, bounded := window.Bounds(now); bounded {
		rev.From, rev.To = &start, &end
	}
	for _, o := range orders {
		if o.Status != OrderReceived || !window.Contains(o.CreatedAt, now) {
			continue
		}
		rev.OrderCount++
		rev.Total = rev.Total.Add(o.Total)
	}
	return rev
}
