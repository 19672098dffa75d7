// Package statistics contains the income/expense statistics use case.
package statistics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainerror "github.com/finance-tracker/wallet-ledger/internal/domain/error"
)

// Window selects the bucket granularity of the statistics.
type Window string

const (
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
	WindowYearly  Window = "yearly"
)

const (
	weeklyBuckets  = 7
	monthlyBuckets = 12
)

// ParseWindow converts a window name, case-insensitively.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeekly, WindowMonthly, WindowYearly:
		return w, nil
	default:
		return "", domainerror.NewStatisticsError(
			domainerror.ErrCodeInvalidStatsWindow,
			"window must be: weekly, monthly, or yearly",
			domainerror.ErrInvalidStatsWindow,
		)
	}
}

// Bucket is one calendar period of the statistics. Start is inclusive, End exclusive.
type Bucket struct {
	Key     string
	Label   string
	Start   time.Time
	End     time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// buildBuckets returns the empty, chronologically ordered buckets of a window
// ending at now. firstYear only matters for the yearly window.
func buildBuckets(window Window, now time.Time, firstYear int) []Bucket {
	loc := now.Location()
	var buckets []Bucket

	switch window {
	case WindowWeekly:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		for i := weeklyBuckets - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			buckets = append(buckets, newBucket(start, start.AddDate(0, 0, 1), window))
		}

	case WindowMonthly:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		for i := monthlyBuckets - 1; i >= 0; i-- {
			start := month.AddDate(0, -i, 0)
			buckets = append(buckets, newBucket(start, start.AddDate(0, 1, 0), window))
		}

	case WindowYearly:
		if firstYear > now.Year() {
			firstYear = now.Year()
		}
		for year := firstYear; year <= now.Year(); year++ {
			start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
			buckets = append(buckets, newBucket(start, start.AddDate(1, 0, 0), window))
		}
	}

	return buckets
}

func newBucket(start, end time.Time, window Window) Bucket {
	return Bucket{
		Key:     bucketKey(start, window),
		Label:   bucketLabel(start, window),
		Start:   start,
		End:     end,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
}

// bucketKey returns the key of the bucket containing date.
func bucketKey(date time.Time, window Window) string {
	switch window {
	case WindowWeekly:
		return date.Format("2006-01-02")
	case WindowMonthly:
		return date.Format("2006-01")
	default:
		return date.Format("2006")
	}
}

// bucketLabel formats the label shown under a bucket's bars.
// Weekly: "Mon", monthly: "Jan 24", yearly: "2024".
func bucketLabel(start time.Time, window Window) string {
	switch window {
	case WindowWeekly:
		return start.Format("Mon")
	case WindowMonthly:
		return start.Format("Jan 06")
	default:
		return start.Format("2006")
	}
}
