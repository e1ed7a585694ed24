package parse

import (
	"regexp"
	"strconv"
)

// senderRe captures everything up to the first ": ". A body that contains
// ": " before the real delimiter is attributed to the wrong sender; the first
// occurrence always wins.
var senderRe = regexp.MustCompile(`(?s)^(.+?): `)

// Attribute splits a segment's text into sender and body. Text without a
// "name: " prefix is a group notification and is returned whole.
func Attribute(text string) (Sender, string) {
	m := senderRe.FindStringSubmatchIndex(text)
	if m == nil {
		return GroupNotification, text
	}
	return Sender(text[m[2]:m[3]]), text[m[1]:]
}

// Enrich derives the calendar fields of a resolved timestamp. It returns nil
// for an unresolved one.
func Enrich(ts Timestamp) *Calendar {
	t, ok := ts.Time()
	if !ok {
		return nil
	}
	return &Calendar{
		DateOnly:        t.Format("2006-01-02"),
		Year:            t.Year(),
		MonthNumber:     int(t.Month()),
		MonthName:       t.Month().String(),
		DayOfMonth:      t.Day(),
		DayName:         t.Weekday().String(),
		Hour:            t.Hour(),
		Minute:          t.Minute(),
		HourBucketLabel: HourBucket(t.Hour()),
	}
}

// HourBucket labels the hour-long bucket that starts at hour.
func HourBucket(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return strconv.Itoa(hour) + "-" + strconv.Itoa(hour+1)
	}
}
