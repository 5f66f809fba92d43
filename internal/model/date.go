package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component.  It is always held at
// midnight UTC so that subtraction between two dates yields whole days.
// Dates travel as "YYYY-MM-DD" in JSON and are bound to SQL as the same
// string, which every supported driver accepts for DATE columns.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "YYYY-MM-DD" and, for clients that send full
// timestamps, any RFC 3339 value (only the day part is kept).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t), nil
	}
	// drivers that hand back "2006-01-02 15:04:05..." strings
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.  MySQL (parseTime=true) and pgx return
// time.Time, SQLite returns text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
		return nil
	case []byte:
		p, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = p
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Nights returns the number of nights between check-in and check-out.  It
// is zero or negative when check-out is not after check-in.
func Nights(checkIn, checkOut Date) int {
	return int(checkOut.Sub(checkIn.Time).Hours() / 24)
}

// Overlaps reports whether the stay [aIn, aOut] touches [bIn, bOut].  Both
// bounds are inclusive: a stay arriving on another stay's departure day
// conflicts with it.
func Overlaps(aIn, aOut, bIn, bOut Date) bool {
	return !aIn.After(bOut.Time) && !aOut.Before(bIn.Time)
}
