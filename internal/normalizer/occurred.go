package normalizer

import (
	"time"

	"github.com/iurnickita/merchantsync/internal/model"
)

// Форматы времени, которые встречаются в API и в таблице портала (id-ID).
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006, 15.04.05",
	"02/01/2006 15.04.05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// occurredDate is the business day of occurredAt; unparsable values fall back
// to the capture day.
func occurredDate(occurredAt string, loc *time.Location, scrapedAt time.Time) string {
	if t, ok := parseOccurredAt(occurredAt, loc); ok {
		return t.In(loc).Format(model.DateLayout)
	}
	return scrapedAt.In(loc).Format(model.DateLayout)
}

func parseOccurredAt(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
