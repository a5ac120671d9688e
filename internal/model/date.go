package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. The zero value means no date.
type Date string

func ParseDate(value string) (Date, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", value)
	}
	return Date(parsed.Format(DateLayout)), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) IsZero() bool {
	return d == ""
}

// Time returns midnight UTC of d. ok is false for the zero Date or a malformed value.
func (d Date) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func (d Date) AddDays(days int) Date {
	t, ok := d.Time()
	if !ok {
		return d
	}
	return DateOf(t.AddDate(0, 0, days))
}

func (d Date) String() string {
	if d == "" {
		return "none"
	}
	return string(d)
}
