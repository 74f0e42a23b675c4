package orders

import (
	"sort"
	"strings"
)

// FilterLogs keeps logs whose order id contains query, ignoring case.
// An empty query keeps everything.
func FilterLogs(logs []TransitionLog, query string) []TransitionLog {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]TransitionLog, 0, len(logs))
	for _, l := range logs {
		if q == "" || strings.Contains(strings.ToLower(l.OrderID), q) {
			out = append(out, l)
		}
	}
	return out
}

// SortLogsByDate returns a sorted copy; ties keep their input order.
func SortLogsByDate(logs []TransitionLog, descending bool) []TransitionLog {
	out := make([]TransitionLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].TransitionDate.After(out[j].TransitionDate)
		}
		return out[i].TransitionDate.Before(out[j].TransitionDate)
	})
	return out
}

func LogsForOrder(logs []TransitionLog, orderID string) []TransitionLog {
	out := make([]TransitionLog, 0)
	for _, l := range logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out
}
