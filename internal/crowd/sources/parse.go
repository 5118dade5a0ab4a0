package sources

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
)

// Column names of the prediction table.
const (
	colPlace    = "place"
	colDate     = "date"
	colHour     = "hour"
	colDistrict = "district"
	colLevel    = "busyness_level"
)

var errNoPlaceColumn = errors.New("prediction table has no place column")

// parseTable turns a header row plus records into rows. Cells that cannot be
// parsed leave the corresponding field unset; a bad cell never drops the
// whole table. Records with an empty place are skipped.
func parseTable(table [][]string) ([]crowd.Row, error) {
	if len(table) == 0 {
		return []crowd.Row{}, nil
	}

	cols := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[colPlace]; !ok {
		return nil, errNoPlaceColumn
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]crowd.Row, 0, len(table)-1)
	for _, rec := range table[1:] {
		place := cell(rec, colPlace)
		if place == "" {
			continue
		}
		row := crowd.Row{
			Place:    place,
			District: cell(rec, colDistrict),
			Date:     parseNumber(cell(rec, colDate), true),
			Hour:     parseNumber(cell(rec, colHour), false),
		}
		if level := parseNumber(cell(rec, colLevel), false); level != nil {
			row.Level = crowd.Level(*level)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseNumber accepts integers and integral-valued decimals ("45580.0").
// With truncate set, a fractional value keeps its integer part, which is how
// a day serial carrying a time of day is read.
func parseNumber(s string, truncate bool) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f != math.Trunc(f) && !truncate {
		return nil
	}
	n := int(math.Floor(f))
	return &n
}
