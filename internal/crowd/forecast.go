package crowd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
)

const (
	DefaultForecastLimit = 12
	MinForecastLimit     = 1
	MaxForecastLimit     = 48
)

// ClampLimit forces a forecast window size into [MinForecastLimit, MaxForecastLimit].
func ClampLimit(limit int) int {
	if limit < MinForecastLimit {
		return MinForecastLimit
	}
	if limit > MaxForecastLimit {
		return MaxForecastLimit
	}
	return limit
}

// ParseLimit reads a limit query value. An empty value means the default,
// anything unparseable means the minimum.
func ParseLimit(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultForecastLimit
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return MinForecastLimit
	}
	return ClampLimit(n)
}

type stampedRow struct {
	row Row
	ts  time.Time
}

// SelectForecast builds the forecast window for place.
//
// Upcoming hours (at or after now) come first in ascending order. When there
// are fewer than limit of them the window is topped up with the remaining
// rows, past ones included, in their own ascending order. The window is
// therefore not globally time-ordered once backfill kicks in.
func SelectForecast(rows []Row, place string, now time.Time, limit int, registry Registry, resolver *Resolver) Forecast {
	limit = ClampLimit(limit)

	result := Forecast{
		Place: strings.TrimSpace(place),
		Items: []ForecastItem{},
	}
	if p, ok := registry.Lookup(place); ok {
		coords := p.Coordinates
		result.Place = p.Name
		result.Coordinates = &coords
	}

	var future, rest []stampedRow
	for _, r := range rows {
		if !common.SameName(r.Place, result.Place) {
			continue
		}
		ts, ok := resolver.Timestamp(r.Date, r.Hour)
		if !ok {
			continue
		}
		if ts.Before(now) {
			rest = append(rest, stampedRow{row: r, ts: ts})
		} else {
			future = append(future, stampedRow{row: r, ts: ts})
		}
	}

	byTime := func(s []stampedRow) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].ts.Before(s[j].ts) })
	}
	byTime(future)

	selected := future
	if len(selected) > limit {
		selected = selected[:limit]
	}
	if len(selected) < limit {
		byTime(rest)
		need := limit - len(selected)
		if need > len(rest) {
			need = len(rest)
		}
		selected = append(selected, rest[:need]...)
	}

	for _, s := range selected {
		result.Items = append(result.Items, ForecastItem{
			Timestamp: s.ts,
			Hour:      s.ts.Hour(),
			Label:     s.row.Level.Label(),
			Score:     s.row.Level.Score(),
			Date:      s.ts.Format("2006-01-02"),
		})
	}

	result.Best = bestItem(result.Items)
	result.BestHint = BestHint(result.Best, now, resolver)
	return result
}

// bestItem returns the first item with the lowest score.
func bestItem(items []ForecastItem) *ForecastItem {
	if len(items) == 0 {
		return nil
	}
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = float64(it.Score)
	}
	best := items[floats.MinIdx(scores)]
	return &best
}

// BestHint renders the best-time sentence shown next to a forecast, e.g.
// "Best time to visit: 09:00–10:00 today (Quiet)."
func BestHint(best *ForecastItem, now time.Time, resolver *Resolver) string {
	if best == nil {
		return ""
	}
	day := best.Timestamp.In(resolver.Location()).Format("Jan 2, 2006")
	if resolver.SameDay(best.Timestamp, now) {
		day = "today"
	}
	return fmt.Sprintf("Best time to visit: %02d:00–%02d:00 %s (%s).",
		best.Hour, (best.Hour+1)%24, day, best.Label)
}
