package services

import (
	"errors"
	"testing"
	"time"
)

func TestWindowsForRangeSplitsIntoHourlyWindows(t *testing.T) {
	start := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	windows, err := windowsForRange(start, end, 6, 22)
	if err != nil {
		t.Fatalf("windowsForRange: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if windows[0].StartTime != "09:00:00" || windows[0].EndTime != "10:00:00" {
		t.Fatalf("unexpected first window %+v", windows[0])
	}
	if windows[2].StartTime != "11:00:00" || windows[2].EndTime != "12:00:00" {
		t.Fatalf("unexpected last window %+v", windows[2])
	}
	wantDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, w := range windows {
		if !w.Date.Equal(wantDate) {
			t.Fatalf("expected date %v, got %v", wantDate, w.Date)
		}
	}
}

func TestWindowsForRangeAllowsClosingBoundary(t *testing.T) {
	start := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC)

	windows, err := windowsForRange(start, end, 6, 22)
	if err != nil {
		t.Fatalf("windowsForRange: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
}

func TestWindowsForRangeRejectsMisalignedTimes(t *testing.T) {
	start := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	if _, err := windowsForRange(start, end, 6, 22); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWindowsForRangeRejectsReversedRange(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)

	if _, err := windowsForRange(start, end, 6, 22); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWindowsForRangeRejectsCrossMidnightRange(t *testing.T) {
	start := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC)

	if _, err := windowsForRange(start, end, 0, 24); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWindowsForRangeRejectsOutsideOpeningHours(t *testing.T) {
	early := time.Date(2026, 3, 15, 5, 0, 0, 0, time.UTC)
	earlyEnd := time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC)
	if _, err := windowsForRange(early, earlyEnd, 6, 22); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for early start, got %v", err)
	}

	late := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)
	lateEnd := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	if _, err := windowsForRange(late, lateEnd, 6, 22); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for late end, got %v", err)
	}
}
