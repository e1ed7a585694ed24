package parse

import (
	"strconv"
	"strings"
	"time"
)

// Columns names the fields of Row in order.
var Columns = []string{
	"index", "line", "timestamp", "date_only", "year", "month_number", "month_name",
	"day_of_month", "day_name", "hour", "minute", "hour_bucket_label", "sender", "body",
}

var cellEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// Row flattens a record into TSV-safe cells. Unresolved temporal cells are
// empty.
func (r MessageRecord) Row() []string {
	row := []string{strconv.Itoa(r.Index), strconv.Itoa(r.Line)}
	if t, ok := r.Timestamp.Time(); ok && r.Calendar != nil {
		c := r.Calendar
		row = append(row,
			t.Format(time.RFC3339),
			c.DateOnly,
			strconv.Itoa(c.Year),
			strconv.Itoa(c.MonthNumber),
			c.MonthName,
			strconv.Itoa(c.DayOfMonth),
			c.DayName,
			strconv.Itoa(c.Hour),
			strconv.Itoa(c.Minute),
			c.HourBucketLabel,
		)
	} else {
		row = append(row, make([]string, 10)...)
	}
	return append(row, cellEscaper.Replace(string(r.Sender)), cellEscaper.Replace(r.Body))
}
