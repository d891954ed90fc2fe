package rent

import (
	"time"

	"go-pms/pkg/apperror"
)

// ComputeLeaseEnd derives the lease end from the start and duration.
// Monthly adds the duration in months; yearly adds whole years first and
// the remainder in months. Custom leases carry a caller-supplied end and
// get no computation. The day of month is clamped to the target month's
// length, so a lease starting Jan 31 plus one month ends Feb 29 in a leap
// year and Feb 28 otherwise.
func ComputeLeaseEnd(start time.Time, periodType string, durationMonths int) (*time.Time, error) {
	switch periodType {
	case PeriodCustom:
		return nil, nil
	case PeriodMonthly:
		end := addMonthsClamped(start, durationMonths)
		return &end, nil
	case PeriodYearly:
		years := durationMonths / 12
		months := durationMonths % 12
		end := addMonthsClamped(start, years*12+months)
		return &end, nil
	default:
		return nil, &apperror.ValidationError{Field: "periodType", Reason: "must be monthly, yearly or custom"}
	}
}

// addMonthsClamped is time.AddDate without its overflow rollover: Jan 31
// plus one month lands on the last day of February, not March 2/3.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	totalMonths := int(month) - 1 + months
	targetYear := year + totalMonths/12
	targetMonth := time.Month(totalMonths%12 + 1)
	if totalMonths < 0 && totalMonths%12 != 0 {
		targetYear--
		targetMonth = time.Month(totalMonths%12 + 13)
	}

	if last := daysIn(targetYear, targetMonth); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
