package crowd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hours(items []ForecastItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Hour
	}
	return out
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", DefaultForecastLimit},
		{"  ", DefaultForecastLimit},
		{"0", 1},
		{"-5", 1},
		{"abc", 1},
		{"1", 1},
		{" 7 ", 7},
		{"48", 48},
		{"49", 48},
		{"1000", 48},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLimit(tt.in), "ParseLimit(%q)", tt.in)
	}
}

func TestSelectForecastUpcomingOnly(t *testing.T) {
	rows := []Row{
		row("Lotus Tower", 0, 13, "Colombo", LevelBusy),
		row("Lotus Tower", 0, 11, "Colombo", LevelModerate),
		row("Lotus Tower", 1, 9, "Colombo", LevelQuiet),
		row("Lotus Tower", 0, 12, "Colombo", LevelVeryBusy),
		row("Galle Face", 0, 11, "Colombo", LevelQuiet),
	}

	got := SelectForecast(rows, "Lotus Tower", testNow, 3, testRegistry(), testResolver())

	assert.Equal(t, "Lotus Tower", got.Place)
	require.NotNil(t, got.Coordinates)
	assert.Equal(t, Coordinates{Lat: 6.9272, Lon: 79.8487}, *got.Coordinates)
	assert.Equal(t, []int{11, 12, 13}, hours(got.Items))
	for _, it := range got.Items {
		assert.False(t, it.Timestamp.Before(testNow))
	}
	assert.Equal(t, ForecastItem{
		Timestamp: time.Date(2025, time.March, 10, 11, 0, 0, 0, colombo),
		Hour:      11,
		Label:     LabelModerate,
		Score:     2,
		Date:      "2025-03-10",
	}, got.Items[0])
}

func TestSelectForecastBackfillsFromPast(t *testing.T) {
	rows := []Row{
		row("Lotus Tower", 0, 9, "Colombo", LevelQuiet),
		row("Lotus Tower", 0, 12, "Colombo", LevelBusy),
		row("Lotus Tower", 0, 8, "Colombo", LevelModerate),
		row("Lotus Tower", 0, 11, "Colombo", LevelBusy),
	}

	got := SelectForecast(rows, "Lotus Tower", testNow, 3, testRegistry(), testResolver())

	require.Len(t, got.Items, 3)
	assert.Equal(t, []int{11, 12, 8}, hours(got.Items))
	// The backfilled item predates both upcoming ones.
	assert.True(t, got.Items[2].Timestamp.Before(testNow))
	assert.True(t, got.Items[2].Timestamp.Before(got.Items[0].Timestamp))
}

func TestSelectForecastReturnsFewerWhenDataRunsOut(t *testing.T) {
	rows := []Row{
		row("Lotus Tower", 0, 9, "Colombo", LevelQuiet),
		row("Lotus Tower", 0, 11, "Colombo", LevelBusy),
	}

	got := SelectForecast(rows, "Lotus Tower", testNow, 12, testRegistry(), testResolver())

	assert.Equal(t, []int{11, 9}, hours(got.Items))
}

func TestSelectForecastSkipsRowsWithoutTimestamp(t *testing.T) {
	noDate := row("Lotus Tower", 0, 14, "Colombo", LevelQuiet)
	noDate.Date = nil
	badHour := row("Lotus Tower", 0, 0, "Colombo", LevelQuiet)
	badHour.Hour = intp(25)
	rows := []Row{noDate, badHour, row("Lotus Tower", 0, 15, "Colombo", LevelBusy)}

	got := SelectForecast(rows, "Lotus Tower", testNow, 5, testRegistry(), testResolver())

	assert.Equal(t, []int{15}, hours(got.Items))
}

func TestSelectForecastClampsLimit(t *testing.T) {
	var rows []Row
	for d := 0; d < 3; d++ {
		for h := 0; h < 24; h++ {
			rows = append(rows, row("Galle Face", d, h, "Colombo", LevelModerate))
		}
	}

	got := SelectForecast(rows, "Galle Face", testNow, 1000, testRegistry(), testResolver())
	assert.Len(t, got.Items, MaxForecastLimit)

	got = SelectForecast(rows, "Galle Face", testNow, 0, testRegistry(), testResolver())
	require.Len(t, got.Items, MinForecastLimit)
	assert.Equal(t, 11, got.Items[0].Hour)
}

func TestSelectForecastBestIsFirstLowestScore(t *testing.T) {
	rows := []Row{
		row("Gangaramaya", 0, 11, "Colombo", LevelBusy),
		row("Gangaramaya", 0, 12, "Colombo", LevelModerate),
		row("Gangaramaya", 0, 13, "Colombo", LevelVeryBusy),
		row("Gangaramaya", 0, 14, "Colombo", LevelModerate),
	}

	got := SelectForecast(rows, "gangaramaya", testNow, 12, testRegistry(), testResolver())

	require.NotNil(t, got.Best)
	assert.Equal(t, 12, got.Best.Hour)
	assert.Equal(t, "Best time to visit: 12:00–13:00 today (Moderate).", got.BestHint)
	for _, it := range got.Items {
		assert.GreaterOrEqual(t, it.Score, got.Best.Score)
	}
}

func TestSelectForecastUnknownLevelScoresAsBusy(t *testing.T) {
	rows := []Row{
		row("Gangaramaya", 0, 11, "Colombo", 0),
		row("Gangaramaya", 0, 12, "Colombo", LevelModerate),
	}

	got := SelectForecast(rows, "Gangaramaya", testNow, 12, testRegistry(), testResolver())

	require.Len(t, got.Items, 2)
	assert.Equal(t, LabelModerate, got.Items[0].Label)
	assert.Equal(t, 3, got.Items[0].Score)
	assert.Equal(t, 12, got.Best.Hour)
}

func TestSelectForecastIsIdempotent(t *testing.T) {
	rows := []Row{
		row("Lotus Tower", 0, 9, "Colombo", LevelQuiet),
		row("Lotus Tower", 0, 12, "Colombo", LevelBusy),
		row("Lotus Tower", 0, 11, "Colombo", LevelBusy),
	}

	first := SelectForecast(rows, "Lotus Tower", testNow, 3, testRegistry(), testResolver())
	second := SelectForecast(rows, "Lotus Tower", testNow, 3, testRegistry(), testResolver())

	assert.Equal(t, first, second)
}

func TestSelectForecastUnknownPlace(t *testing.T) {
	got := SelectForecast(nil, "  Atlantis ", testNow, 12, testRegistry(), testResolver())

	assert.Equal(t, "Atlantis", got.Place)
	assert.Nil(t, got.Coordinates)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
	assert.Nil(t, got.Best)
	assert.Empty(t, got.BestHint)
}

func TestBestHint(t *testing.T) {
	r := testResolver()

	tomorrow := time.Date(2025, time.March, 11, 23, 0, 0, 0, colombo)
	best := &ForecastItem{Timestamp: tomorrow, Hour: 23, Label: LabelQuiet}
	assert.Equal(t, "Best time to visit: 23:00–00:00 Mar 11, 2025 (Quiet).", BestHint(best, testNow, r))

	assert.Empty(t, BestHint(nil, testNow, r))
}

func TestSelectForecastUnknownPlaceMatchesRawRows(t *testing.T) {
	rows := []Row{
		row(" atlantis ", 0, 12, "Colombo", LevelBusy),
		row("Atlantis", 0, 11, "Colombo", LevelQuiet),
		row("Lotus Tower", 0, 11, "Colombo", LevelQuiet),
	}

	got := SelectForecast(rows, "Atlantis", testNow, 12, testRegistry(), testResolver())

	assert.Equal(t, "Atlantis", got.Place)
	assert.Nil(t, got.Coordinates)
	assert.Equal(t, []int{11, 12}, hours(got.Items))
	require.NotNil(t, got.Best)
	assert.Equal(t, 11, got.Best.Hour)
	assert.Equal(t, LabelQuiet, got.Best.Label)
}
