package report

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cassa/internal/core"
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func hourLabels() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%d:00", h)
	}
	return labels
}

func dayLabels(n int) []string {
	labels := make([]string, n)
	for d := range labels {
		labels[d] = strconv.Itoa(d + 1)
	}
	return labels
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek is the most recent Sunday at local midnight.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// bucket sums the total of every sale at or after start into the index chosen by
// index. There is no upper bound; out-of-range indexes are dropped.
func bucket(v View, sales []core.Sale, loc *time.Location, start time.Time, index func(time.Time) int) View {
	for _, s := range sales {
		t := s.Timestamp.In(loc)
		if t.Before(start) {
			continue
		}
		if !v.add(index(t), s.Total.Cents) {
			slog.Warn("Sale outside report range", "view", v.Name, "sale_id", s.ID, "timestamp", s.Timestamp)
		}
	}
	return v
}

// Daily buckets today's sales by hour of day.
func (a *Aggregator) Daily(sales []core.Sale, now time.Time) View {
	now = now.In(a.loc)
	v := newView(ViewDaily, "Today by hour", UnitCents, hourLabels())
	return bucket(v, sales, a.loc, startOfDay(now), func(t time.Time) int { return t.Hour() })
}

// Weekly buckets this week's sales by weekday, Sunday first.
func (a *Aggregator) Weekly(sales []core.Sale, now time.Time) View {
	now = now.In(a.loc)
	v := newView(ViewWeekly, "This week by day", UnitCents, append([]string(nil), weekdayLabels...))
	return bucket(v, sales, a.loc, startOfWeek(now), func(t time.Time) int { return int(t.Weekday()) })
}

// Monthly buckets this month's sales by day of month.
func (a *Aggregator) Monthly(sales []core.Sale, now time.Time) View {
	now = now.In(a.loc)
	v := newView(ViewMonthly, "This month by day", UnitCents, dayLabels(daysInMonth(now)))
	return bucket(v, sales, a.loc, startOfMonth(now), func(t time.Time) int { return t.Day() - 1 })
}
