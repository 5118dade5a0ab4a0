package crowd

import (
	"context"
	"time"
)

// colombo is a fixed +05:30 zone so tests don't depend on the tz database.
var colombo = time.FixedZone("+0530", 5*60*60+30*60)

// testNow is 10:30 local on Mar 10, 2025.
var testNow = time.Date(2025, time.March, 10, 10, 30, 0, 0, colombo)

func testResolver() *Resolver {
	return NewResolver(colombo, func() time.Time { return testNow })
}

func testRegistry() *StaticRegistry {
	return NewStaticRegistry(DefaultPlaces)
}

func intp(v int) *int { return &v }

// row builds a prediction row dayOffset days from testNow.
func row(place string, dayOffset, hour int, district string, level Level) Row {
	serial := testResolver().Serial(testNow) + dayOffset
	return Row{
		Place:    place,
		Date:     intp(serial),
		Hour:     intp(hour),
		District: district,
		Level:    level,
	}
}

type fakeLoader struct {
	rows  []Row
	err   error
	calls int
}

func (f *fakeLoader) Name() string { return "fake" }

func (f *fakeLoader) Load(context.Context) ([]Row, error) {
	f.calls++
	return f.rows, f.err
}
