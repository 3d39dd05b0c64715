package evaluator

import (
	"math"
	"strings"
	"time"

	"github.com/gridformula/gridformula/pkg/types"
)

func fnToday(s *evalState, args []types.Value) (types.Value, error) {
	now := s.e.opts.Now()
	return types.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())), nil
}

func fnNow(s *evalState, args []types.Value) (types.Value, error) {
	return types.Date(s.e.opts.Now()), nil
}

func fnYear(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("YEAR", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Year())), nil
}

func fnMonth(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("MONTH", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Month())), nil
}

func fnDay(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("DAY", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Day())), nil
}

func fnHour(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("HOUR", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Hour())), nil
}

func fnMinute(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("MINUTE", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Minute())), nil
}

func fnSecond(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("SECOND", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Second())), nil
}

// normalizeUnit folds singular and plural unit spellings into one form.
func normalizeUnit(v types.Value) string {
	unit := strings.ToLower(strings.TrimSpace(v.ToText()))
	return strings.TrimSuffix(unit, "s")
}

// fnDateAdd shifts a date by an amount of the given unit. Calendar units go
// through AddDate so month arithmetic follows calendar rules; clock units
// are plain duration offsets.
func fnDateAdd(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("DATEADD", args[0])
	if err != nil {
		return types.NullValue, err
	}
	amount := intArg(args[2])

	switch normalizeUnit(args[1]) {
	case "year":
		return types.Date(t.AddDate(amount, 0, 0)), nil
	case "month":
		return types.Date(t.AddDate(0, amount, 0)), nil
	case "week":
		return types.Date(t.AddDate(0, 0, amount*7)), nil
	case "day":
		return types.Date(t.AddDate(0, 0, amount)), nil
	case "hour":
		return types.Date(t.Add(time.Duration(amount) * time.Hour)), nil
	case "minute":
		return types.Date(t.Add(time.Duration(amount) * time.Minute)), nil
	case "second":
		return types.Date(t.Add(time.Duration(amount) * time.Second)), nil
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "DATEADD: unknown unit: %q", args[1].ToText())
	}
}

// fnDateDiff returns the whole number of units between two dates, truncated
// toward zero. Year and month deltas use calendar components, the rest use
// elapsed time.
func fnDateDiff(s *evalState, args []types.Value) (types.Value, error) {
	from, err := dateArg("DATEDIFF", args[0])
	if err != nil {
		return types.NullValue, err
	}
	to, err := dateArg("DATEDIFF", args[1])
	if err != nil {
		return types.NullValue, err
	}

	switch normalizeUnit(args[2]) {
	case "year":
		return types.Number(float64(calendarMonths(from, to) / 12)), nil
	case "month":
		return types.Number(float64(calendarMonths(from, to))), nil
	case "week":
		return types.Number(math.Trunc(to.Sub(from).Hours() / 24 / 7)), nil
	case "day":
		return types.Number(math.Trunc(to.Sub(from).Hours() / 24)), nil
	case "hour":
		return types.Number(math.Trunc(to.Sub(from).Hours())), nil
	case "minute":
		return types.Number(math.Trunc(to.Sub(from).Minutes())), nil
	case "second":
		return types.Number(math.Trunc(to.Sub(from).Seconds())), nil
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "DATEDIFF: unknown unit: %q", args[2].ToText())
	}
}

// calendarMonths counts whole months from a to b, negative when b is before
// a. A partial trailing month does not count.
func calendarMonths(a, b time.Time) int {
	sign := 1
	if b.Before(a) {
		a, b = b, a
		sign = -1
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return sign * months
}

// fnWeekday returns the day of the week, 0 for Sunday through 6 for
// Saturday.
func fnWeekday(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("WEEKDAY", args[0])
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(float64(t.Weekday())), nil
}

// fnWeekNum returns the week of the year, counting the week containing
// January 1 as week 1 and starting weeks on Sunday.
func fnWeekNum(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("WEEKNUM", args[0])
	if err != nil {
		return types.NullValue, err
	}
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	days := int(day.Sub(jan1).Hours() / 24)
	return types.Number(float64((days+int(jan1.Weekday()))/7 + 1)), nil
}

// fnEOMonth returns the last day of the month that is the given number of
// months away from the date.
func fnEOMonth(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("EOMONTH", args[0])
	if err != nil {
		return types.NullValue, err
	}
	months := intArg(args[1])
	// Day zero of month+1 is the last day of the target month.
	return types.Date(time.Date(t.Year(), t.Month()+time.Month(months)+1, 0, 0, 0, 0, 0, t.Location())), nil
}

// maxDaySpan bounds the day-by-day walks in WORKDAY and NETWORKDAYS, about
// 2700 years of days. Anything past it is rejected as a bad argument.
const maxDaySpan = 1000000

// fnWorkday returns the date the given number of working days away,
// skipping Saturdays and Sundays. Negative counts step backwards.
func fnWorkday(s *evalState, args []types.Value) (types.Value, error) {
	t, err := dateArg("WORKDAY", args[0])
	if err != nil {
		return types.NullValue, err
	}
	remaining := intArg(args[1])
	step := 1
	if remaining < 0 {
		remaining = -remaining
		step = -1
	}
	if remaining > maxDaySpan {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "WORKDAY: count out of range")
	}
	for remaining > 0 {
		t = t.AddDate(0, 0, step)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			remaining--
		}
	}
	return types.Date(t), nil
}

// fnNetworkdays counts working days between two dates, inclusive of both
// endpoints. The count is negative when the end date is before the start.
func fnNetworkdays(s *evalState, args []types.Value) (types.Value, error) {
	from, err := dateArg("NETWORKDAYS", args[0])
	if err != nil {
		return types.NullValue, err
	}
	to, err := dateArg("NETWORKDAYS", args[1])
	if err != nil {
		return types.NullValue, err
	}

	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	// Unix seconds rather than Sub, which saturates on multi-century spans.
	if (to.Unix()-from.Unix())/86400 > maxDaySpan {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "NETWORKDAYS: date range too large")
	}

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return types.Number(float64(sign * count)), nil
}

// fnYearFrac returns the fraction of a year between two dates under a day
// count basis: 0 is 30/360 US (the default), 1 actual/actual, 2 actual/360,
// 3 actual/365, 4 30/360 European.
func fnYearFrac(s *evalState, args []types.Value) (types.Value, error) {
	from, err := dateArg("YEARFRAC", args[0])
	if err != nil {
		return types.NullValue, err
	}
	to, err := dateArg("YEARFRAC", args[1])
	if err != nil {
		return types.NullValue, err
	}
	basis := 0
	if len(args) == 3 {
		basis = intArg(args[2])
	}
	if from.After(to) {
		from, to = to, from
	}

	switch basis {
	case 0:
		return types.Number(days360(from, to, false) / 360), nil
	case 1:
		days := to.Sub(from).Hours() / 24
		return types.Number(days / actualYearLength(from, to)), nil
	case 2:
		return types.Number(to.Sub(from).Hours() / 24 / 360), nil
	case 3:
		return types.Number(to.Sub(from).Hours() / 24 / 365), nil
	case 4:
		return types.Number(days360(from, to, true) / 360), nil
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "YEARFRAC: invalid basis: %d", basis)
	}
}

// days360 counts days between two dates on a 30-day-month convention, in
// either the US (NASD) or the European variant.
func days360(from, to time.Time, european bool) float64 {
	d1, d2 := from.Day(), to.Day()
	if european {
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 {
			d2 = 30
		}
	} else {
		if d1 == 31 || isLastOfFebruary(from) {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
	}
	return float64((to.Year()-from.Year())*360 + (int(to.Month())-int(from.Month()))*30 + d2 - d1)
}

func isLastOfFebruary(t time.Time) bool {
	return t.Month() == time.February && t.AddDate(0, 0, 1).Month() == time.March
}

// actualYearLength averages the lengths of the calendar years the span
// touches.
func actualYearLength(from, to time.Time) float64 {
	total := 0.0
	years := 0.0
	for y := from.Year(); y <= to.Year(); y++ {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(y+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		total += end.Sub(start).Hours() / 24
		years++
	}
	return total / years
}
