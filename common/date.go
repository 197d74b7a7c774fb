package common

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Date is a calendar day without time of day or zone, persisted as YYYY-MM-DD text.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(TimeNow())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date '%s', expect format YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Month returns the YYYY-MM month the date belongs to.
func (d Date) Month() string {
	return d.t.Format(MonthLayout)
}

func (d Date) Time() time.Time {
	return d.t
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Week returns the monday and the sunday of the week holding d.
func (d Date) Week() (Date, Date) {
	start := d.AddDays(-((int(d.t.Weekday()) + 6) % 7))
	return start, start.AddDays(6)
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(v interface{}) error {
	switch value := v.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(value)
		return nil
	case string:
		return d.scanText(value)
	case []byte:
		return d.scanText(string(value))
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is a closed range of days, a nil End means unbounded future.
type DateRange struct {
	Start Date
	End   *Date
}

// Overlaps reports whether two closed ranges share at least one day.
func (r DateRange) Overlaps(o DateRange) bool {
	if r.End != nil && o.Start.After(*r.End) {
		return false
	}
	if o.End != nil && r.Start.After(*o.End) {
		return false
	}
	return true
}

func (r DateRange) Covers(d Date) bool {
	if d.Before(r.Start) {
		return false
	}
	return r.End == nil || !d.After(*r.End)
}

// ParseMonth validates a YYYY-MM value and returns its first and last day.
func ParseMonth(month string) (Date, Date, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("invalid month '%s', expect format YYYY-MM", month)
	}
	first := DateOf(t)
	return first, DateOf(t.AddDate(0, 1, -1)), nil
}
