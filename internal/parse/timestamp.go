package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateOrder decides whether day-first or month-first layouts are tried first
// when a timestamp such as "05/06/2023" is ambiguous.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

func (o DateOrder) String() string {
	if o == MonthFirst {
		return "month-first"
	}
	return "day-first"
}

// ParseDateOrder accepts "day-first" or "month-first" (and the short forms
// "dmy" / "mdy"). An empty string means DayFirst.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day-first", "dayfirst", "dmy":
		return DayFirst, nil
	case "month-first", "monthfirst", "mdy":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("unknown date order %q (want day-first or month-first)", s)
	}
}

var (
	dayFirst24 = []string{"2/1/2006, 15:04", "2/1/06, 15:04", "2-1-2006, 15:04", "2-1-06, 15:04"}
	dayFirst12 = []string{"2/1/2006, 3:04 PM", "2/1/06, 3:04 PM", "2-1-2006, 3:04 PM", "2-1-06, 3:04 PM"}

	monthFirst24 = []string{"1/2/2006, 15:04", "1/2/06, 15:04", "1-2-2006, 15:04", "1-2-06, 15:04"}
	monthFirst12 = []string{"1/2/2006, 3:04 PM", "1/2/06, 3:04 PM", "1-2-2006, 3:04 PM", "1-2-06, 3:04 PM"}
)

// Layouts returns the candidate layouts in the order they are tried.
func Layouts(order DateOrder) []string {
	groups := [][]string{dayFirst24, dayFirst12, monthFirst24, monthFirst12}
	if order == MonthFirst {
		groups = [][]string{monthFirst24, monthFirst12, dayFirst24, dayFirst12}
	}
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var canonicalRe = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}),?\s*(\d{1,2}:\d{2})\s*([AaPp][Mm])?$`)

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\t", " ", "\r", " ", "\n", " ")

// canonical rewrites an anchor into the "date, H:MM[ AM]" shape the layouts
// expect. ok is false when the string does not have that overall shape, or
// when a 12-hour clock reads outside 1-12 ("0:15 PM"), which Go's "3" would
// otherwise accept.
func canonical(raw string) (string, bool) {
	s := strings.TrimSpace(spaceReplacer.Replace(raw))
	m := canonicalRe.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}
	out := m[1] + ", " + m[2]
	if m[3] != "" {
		hour, _ := strconv.Atoi(m[2][:strings.IndexByte(m[2], ':')])
		if hour < 1 || hour > 12 {
			return s, false
		}
		out += " " + strings.ToUpper(m[3])
	}
	return out, true
}

// ResolveTimestamp tries each layout in order and returns the first full
// match. When none match, a lenient parser gets one attempt; after that the
// result is Unresolved.
func (p Parser) ResolveTimestamp(raw string) Timestamp {
	loc := p.location()
	s, ok := canonical(raw)
	if ok {
		for _, layout := range Layouts(p.Order) {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return Resolved(t)
			}
		}
	}
	if t, ok := lenient(s, loc, p.Order); ok {
		return Resolved(t)
	}
	return Unresolved
}

func lenient(s string, loc *time.Location, order DateOrder) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseIn(s, loc, dateparse.PreferMonthFirst(order == MonthFirst))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
