package worldgen

import "testing"

func TestSetSpeedValidatesValues(t *testing.T) {
	ts := NewTimeService()

	for _, speed := range []int{0, 1, 2, 4} {
		if err := ts.SetSpeed(speed); err != nil {
			t.Fatalf("SetSpeed(%d) unexpectedly failed: %v", speed, err)
		}
	}

	if err := ts.SetSpeed(3); err != ErrInvalidSpeed {
		t.Fatalf("expected ErrInvalidSpeed for 3, got %v", err)
	}
	if err := ts.SetSpeed(-1); err != ErrInvalidSpeed {
		t.Fatalf("expected ErrInvalidSpeed for -1, got %v", err)
	}
}

func TestTickFirstCallEstablishesBaseline(t *testing.T) {
	ts := NewTimeService()
	ts.Tick(1000)

	if ts.TotalDays != 0 {
		t.Fatalf("expected day 0 after baseline tick, got %d", ts.TotalDays)
	}
}

func TestTickAdvancesDaysAtSpeedOne(t *testing.T) {
	ts := NewTimeService()
	ts.SetSpeed(1)
	ts.Tick(1) // nonzero: 0 is the watermark's unset sentinel
	ts.Tick(2501)

	if ts.TotalDays != 2 {
		t.Fatalf("expected 2 whole days to elapse over 2500ms at speed 1, got %d", ts.TotalDays)
	}
}

func TestTickAdvancesFasterAtHigherSpeed(t *testing.T) {
	ts := NewTimeService()
	ts.SetSpeed(4)
	ts.Tick(1)
	ts.Tick(1001)

	if ts.TotalDays != 4 {
		t.Fatalf("expected 4 days at speed 4 over 1000ms, got %d", ts.TotalDays)
	}
}

func TestTickSpeedZeroFreezesAndResets(t *testing.T) {
	ts := NewTimeService()
	ts.SetSpeed(1)
	ts.Tick(1)
	ts.Tick(501)

	ts.SetSpeed(0)
	ts.Tick(600)
	ts.Tick(10000)

	if ts.TotalDays != 0 {
		t.Fatalf("expected no advancement while frozen, got %d days", ts.TotalDays)
	}

	ts.SetSpeed(1)
	ts.Tick(10500) // re-establishes the baseline after the speed-0 reset
	ts.Tick(11501)
	if ts.TotalDays != 1 {
		t.Fatalf("expected exactly 1 day after resuming, got %d", ts.TotalDays)
	}
}

func TestDateFromTotalDaysOrdinary(t *testing.T) {
	d := dateFromTotalDays(30)
	if d.Year != 0 || d.SpecialDay != SpecialDayNone {
		t.Fatalf("expected ordinary day in year 0, got %+v", d)
	}
	if d.Month != 2 || d.Day != 2 {
		t.Fatalf("expected month 2 day 2 (30 = 28 + 2, months are 1-indexed), got month=%d day=%d", d.Month, d.Day)
	}
}

func TestDateFromTotalDaysFirstMonthIsOneNotZero(t *testing.T) {
	d := dateFromTotalDays(0)
	if d.SpecialDay != SpecialDayNone {
		t.Fatalf("expected an ordinary day, got %+v", d)
	}
	if d.Month != 1 {
		t.Fatalf("expected month 1 (month 0 is reserved for special days), got %d", d.Month)
	}
}

func TestDateFromTotalDaysLeapYear(t *testing.T) {
	// year 0 is a leap year (366 days): day 364 is the leap day.
	d := dateFromTotalDays(364)
	if d.SpecialDay != SpecialDayLeap {
		t.Fatalf("expected leap special day at offset 364 of a leap year, got %+v", d)
	}
}

func TestDateFromTotalDaysYearDay(t *testing.T) {
	// year 1 is not a leap year: day 364 is the year day, rolling into year 2.
	totalDays := 366 + 364 // full leap year 0, then day 364 of year 1
	d := dateFromTotalDays(totalDays)
	if d.Year != 1 || d.SpecialDay != SpecialDayYear {
		t.Fatalf("expected year-day special day in year 1, got %+v", d)
	}
}

func TestDateFromTotalDaysRollsIntoNextYear(t *testing.T) {
	d := dateFromTotalDays(366) // year 0 is a 366-day leap year; day 366 is year 1's first
	if d.Year != 1 || d.Month != 1 || d.Day != 0 {
		t.Fatalf("expected year 1, month 1, day 0, got %+v", d)
	}
}
