package forecast

import (
	"testing"

	"futureflow/internal/core"
)

func TestAggregateWeeksBoundaries(t *testing.T) {
	now := core.NewDate(2025, 3, 3)
	cal := Calendar{
		now:            cents(100_00), // today -> week 0
		now.AddDays(6): cents(50_00),  // last day of week 0
		now.AddDays(7): cents(70_00),  // first day of week 1
	}

	weeks := AggregateWeeks(cal, now, DefaultWeekCount)

	if len(weeks) != 8 {
		t.Fatalf("got %d weeks, want 8", len(weeks))
	}
	if weeks[0].Total.Cents != 150_00 {
		t.Errorf("week 0 total = %d, want 15000", weeks[0].Total.Cents)
	}
	if weeks[1].Total.Cents != 70_00 {
		t.Errorf("week 1 total = %d, want 7000", weeks[1].Total.Cents)
	}
	if !weeks[0].HasExposure || !weeks[1].HasExposure {
		t.Errorf("exposure flags wrong: %+v", weeks[:2])
	}
	for i := 2; i < 8; i++ {
		if weeks[i].HasExposure || weeks[i].Total.Cents != 0 {
			t.Errorf("week %d should be empty: %+v", i, weeks[i])
		}
	}
}

func TestAggregateWeeksWindows(t *testing.T) {
	now := core.NewDate(2025, 3, 3)
	weeks := AggregateWeeks(Calendar{}, now, 8)

	for i, w := range weeks {
		wantStart := now.AddDays(i * 7)
		wantEnd := wantStart.AddDays(6)
		if w.Index != i {
			t.Errorf("week %d index = %d", i, w.Index)
		}
		if !w.Start.Equal(wantStart.Time) || !w.End.Equal(wantEnd.Time) {
			t.Errorf("week %d range = %v..%v, want %v..%v", i, w.Start, w.End, wantStart, wantEnd)
		}
	}
	// Windows are consecutive and non-overlapping.
	for i := 1; i < len(weeks); i++ {
		if !weeks[i].Start.Equal(weeks[i-1].End.AddDays(1).Time) {
			t.Errorf("week %d does not start the day after week %d ends", i, i-1)
		}
	}
}

func TestAggregateWeeksDefaultCount(t *testing.T) {
	weeks := AggregateWeeks(Calendar{}, core.NewDate(2025, 3, 3), 0)
	if len(weeks) != DefaultWeekCount {
		t.Fatalf("got %d weeks, want default %d", len(weeks), DefaultWeekCount)
	}
}
