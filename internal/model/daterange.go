package model

import (
	"errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrDateRange = errors.New("invalid date range")

// DateRange covers whole calendar days [From, To] in From's location.
type DateRange struct {
	From  time.Time
	To    time.Time
	Label string
}

// ParseDateRange понимает "today", "yesterday", "2006-01-02" и "2006-01-02..2006-01-31".
func ParseDateRange(text string, loc *time.Location, now time.Time) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)
	today := startOfDay(now.In(loc))

	switch text {
	case "", "today":
		return DateRange{From: today, To: today, Label: "today"}, nil
	case "yesterday":
		day := today.AddDate(0, 0, -1)
		return DateRange{From: day, To: day, Label: "yesterday"}, nil
	}

	fromText, toText, isRange := strings.Cut(text, "..")
	from, err := time.ParseInLocation(DateLayout, fromText, loc)
	if err != nil {
		return DateRange{}, errors.Join(ErrDateRange, err)
	}
	to := from
	if isRange {
		to, err = time.ParseInLocation(DateLayout, toText, loc)
		if err != nil {
			return DateRange{}, errors.Join(ErrDateRange, err)
		}
	}
	if to.Before(from) {
		return DateRange{}, ErrDateRange
	}
	return DateRange{From: from, To: to, Label: text}, nil
}

// Days returns every day of the range as "2006-01-02", oldest first.
func (dr DateRange) Days() []string {
	var days []string
	for day := startOfDay(dr.From); !day.After(startOfDay(dr.To)); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(DateLayout))
	}
	return days
}

// Start and End are the instants bounding the range, used by API queries.
func (dr DateRange) Start() time.Time {
	return startOfDay(dr.From)
}

func (dr DateRange) End() time.Time {
	return startOfDay(dr.To).AddDate(0, 0, 1).Add(-time.Millisecond)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
