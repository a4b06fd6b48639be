package clock_test

import (
	"testing"
	"time"

	"github.com/artpar/apiref/adapters/clock"
)

func TestReal_TracksSystemTime(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestFake_PinsTime(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)

	for i := 0; i < 3; i++ {
		if got := clk.Now(); !got.Equal(start) {
			t.Fatalf("Now() = %v, want %v", got, start)
		}
	}
}

func TestFake_Advance(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)

	clk.Advance(90 * time.Minute)
	clk.Advance(-30 * time.Minute)

	if got, want := clk.Now(), start.Add(time.Hour); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}
