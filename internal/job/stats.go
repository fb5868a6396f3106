package job

import (
	"fmt"
	"slices"
	"time"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
)

// monthsShown caps the monthly series.
const monthsShown = 6

// DefaultStats always carries all three statuses.
type DefaultStats struct {
	Pending   int `json:"pending"`
	Declined  int `json:"declined"`
	Interview int `json:"interview"`
}

// MonthlyApplication is one point of the monthly series, e.g. {"Jan 2023", 4}.
type MonthlyApplication struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the /jobs/stats payload.
type Stats struct {
	DefaultStats        DefaultStats         `json:"defaultStats"`
	MonthlyApplications []MonthlyApplication `json:"monthlyApplications"`
}

// statusTotals folds per-status groups into the fixed three-key shape.
// Groups for any other status are dropped.
func statusTotals(groups []entity.StatusCount) DefaultStats {
	var out DefaultStats
	for _, g := range groups {
		switch g.Status {
		case entity.StatusPending:
			out.Pending += g.Count
		case entity.StatusDeclined:
			out.Declined += g.Count
		case entity.StatusInterview:
			out.Interview += g.Count
		}
	}
	return out
}

// monthlySeries keeps the most recent months and returns them oldest first.
func monthlySeries(groups []entity.MonthCount) []MonthlyApplication {
	sorted := slices.Clone(groups)
	slices.SortFunc(sorted, func(a, b entity.MonthCount) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return b.Month - a.Month
	})
	if len(sorted) > monthsShown {
		sorted = sorted[:monthsShown]
	}
	slices.Reverse(sorted)

	out := make([]MonthlyApplication, 0, len(sorted))
	for _, g := range sorted {
		out = append(out, MonthlyApplication{Date: monthLabel(g.Year, g.Month), Count: g.Count})
	}
	return out
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String()[:3], year)
}
