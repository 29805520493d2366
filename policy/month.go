/*
month.go - Calendar month identification and membership

PURPOSE:
  A Month names a calendar month (year + month number) and decides which
  dated records belong to it. Membership is an explicit year/month
  equality on the parsed date: no timezone normalization, no prefix
  tricks on the raw string. A date either parses and lands in the month
  or it contributes nothing.

SEE ALSO:
  - aggregate.go: Uses Contains to scope monthly rollups
*/
package policy

import (
	"fmt"
	"time"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM" into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Contains reports whether the given "YYYY-MM-DD" date falls inside the
// month. Malformed dates are simply not contained.
func (m Month) Contains(date string) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}
