package crowd

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/MenukaRanasinghe/SmartSL/internal/common"
)

// SelectSnapshot returns the current busyness of every registry-known place
// found in rows.
//
// Rows for today are preferred; when the table does not cover today the whole
// table is used. Within that pool rows for the current hour are chosen, or,
// failing that, the whole pool ordered by distance from the current hour.
// When any chosen row belongs to region the result is narrowed to it; an
// empty region disables narrowing.
func SelectSnapshot(rows []Row, now time.Time, region string, registry Registry, resolver *Resolver) []Snapshot {
	if len(rows) == 0 {
		return []Snapshot{}
	}

	pool := make([]Row, 0, len(rows))
	for _, r := range rows {
		if resolver.IsToday(r.Date, now) {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, rows...)
	}

	// Fix the order of rows that tie on hour distance.
	sort.SliceStable(pool, func(i, j int) bool {
		return common.NormalizeName(pool[i].Place) < common.NormalizeName(pool[j].Place)
	})

	currentHour := now.Hour()
	chosen := make([]Row, 0, len(pool))
	for _, r := range pool {
		if r.Hour != nil && *r.Hour == currentHour {
			chosen = append(chosen, r)
		}
	}
	if len(chosen) == 0 {
		chosen = append(chosen, pool...)
		sort.SliceStable(chosen, func(i, j int) bool {
			return hourDistance(chosen[i].Hour, currentHour) < hourDistance(chosen[j].Hour, currentHour)
		})
	}

	if region != "" {
		inRegion := make([]Row, 0, len(chosen))
		for _, r := range chosen {
			if common.SameName(r.District, region) {
				inRegion = append(inRegion, r)
			}
		}
		if len(inRegion) > 0 {
			chosen = inRegion
		}
	}

	out := make([]Snapshot, 0, len(chosen))
	for _, r := range chosen {
		place, ok := registry.Lookup(r.Place)
		if !ok {
			continue
		}
		out = append(out, Snapshot{
			ID:        fmt.Sprintf("%s-%s", place.Name, hourID(r.Hour)),
			Name:      place.Name,
			Lat:       place.Coordinates.Lat,
			Lon:       place.Coordinates.Lon,
			BusyLevel: r.Level.Label(),
		})
	}
	return out
}

// hourDistance is |hour - current|; rows without an hour sort last.
func hourDistance(hour *int, current int) float64 {
	if hour == nil {
		return math.Inf(1)
	}
	return math.Abs(float64(*hour - current))
}

func hourID(hour *int) string {
	if hour == nil {
		return "unknown"
	}
	return strconv.Itoa(*hour)
}
