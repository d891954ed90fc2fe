package rent

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeLeaseEndMonthly(t *testing.T) {
	cases := []struct {
		name     string
		start    time.Time
		duration int
		want     time.Time
	}{
		{"simple", date(2024, time.March, 15), 6, date(2024, time.September, 15)},
		{"year rollover", date(2024, time.November, 1), 3, date(2025, time.February, 1)},
		{"leap clamp", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"non-leap clamp", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"clamp then normal", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"twelve months", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			end, err := ComputeLeaseEnd(c.start, PeriodMonthly, c.duration)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if end == nil || !end.Equal(c.want) {
				t.Errorf("got %v, want %v", end, c.want)
			}
		})
	}
}

func TestComputeLeaseEndYearly(t *testing.T) {
	// 30 months decomposes into 2 years plus 6 months
	end, err := ComputeLeaseEnd(date(2024, time.January, 15), PeriodYearly, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := date(2026, time.July, 15); !end.Equal(want) {
		t.Errorf("got %v, want %v", end, want)
	}

	end, err = ComputeLeaseEnd(date(2024, time.February, 29), PeriodYearly, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := date(2025, time.February, 28); !end.Equal(want) {
		t.Errorf("leap start: got %v, want %v", end, want)
	}
}

func TestComputeLeaseEndCustom(t *testing.T) {
	end, err := ComputeLeaseEnd(date(2024, time.January, 1), PeriodCustom, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end != nil {
		t.Errorf("custom period computed an end: %v", end)
	}
}

func TestComputeLeaseEndInvalidPeriod(t *testing.T) {
	if _, err := ComputeLeaseEnd(date(2024, time.January, 1), "weekly", 4); err == nil {
		t.Error("unknown period type accepted")
	}
}
