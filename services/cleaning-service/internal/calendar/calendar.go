// Package calendar holds month, date and wall-clock arithmetic for cleaning schedules.
//
// Every schedule is expressed in a single fixed UTC+7 zone. Callers pass "now" explicitly;
// nothing in this package reads the machine clock.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Zone is the fixed offset every date and wall-clock time is interpreted in.
var Zone = time.FixedZone("UTC+7", 7*60*60)

// ToLocal converts an instant to the schedule zone.
func ToLocal(t time.Time) time.Time {
	return t.In(Zone)
}

// Month identifies a calendar month with no day component.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), Zone)
	if err != nil {
		return Month{}, fmt.Errorf("month must be YYYY-MM: %q", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t in the schedule zone.
func MonthOf(t time.Time) Month {
	local := ToLocal(t)
	return Month{Year: local.Year(), Month: local.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// Days is the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, Zone).Day()
}

// HasDay reports whether day is a real date in the month.
func (m Month) HasDay(day int) bool {
	return day >= 1 && day <= m.Days()
}

func (m Month) Day(day int) Date {
	return Date{Year: m.Year, Month: m.Month, Day: day}
}

// Start is local midnight of the 1st.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, Zone)
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Month) UnmarshalText(b []byte) error {
	v, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MonthStartWeekdayOffset is the weekday of the 1st, Sunday = 0, used to left-pad a calendar grid.
func MonthStartWeekdayOffset(m Month) int {
	return int(m.Start().Weekday())
}

// Date is a calendar date in the schedule zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), Zone)
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	return DateOf(t), nil
}

// DateOf returns the local date of an instant.
func DateOf(t time.Time) Date {
	local := ToLocal(t)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) MonthOf() Month { return Month{Year: d.Year, Month: d.Month} }

// At composes the date with a wall-clock time in the schedule zone.
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, int(c), 0, 0, Zone)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Clock is a wall-clock time as minutes after local midnight. 24:00 is allowed as a range end.
type Clock int

const EndOfDay Clock = 24 * 60

func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("time must be HH:MM: %q", s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time must be HH:MM: %q", s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// IsPastDay is true once the last second of d (23:59:59 local) is strictly before now.
func IsPastDay(d Date, now time.Time) bool {
	end := time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, Zone)
	return end.Before(ToLocal(now))
}

// IsPastTimeOfDay is true when d at c is strictly before now.
func IsPastTimeOfDay(d Date, c Clock, now time.Time) bool {
	return d.At(c).Before(ToLocal(now))
}

// IsToday reports whether d is the local date of now.
func IsToday(d Date, now time.Time) bool {
	return DateOf(now) == d
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
