package parse

import (
	"testing"
	"time"
)

func TestResolveTimestampLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"12/05/2023, 10:15", time.Date(2023, 5, 12, 10, 15, 0, 0, time.UTC)},
		{"1/2/24, 7:03", time.Date(2024, 2, 1, 7, 3, 0, 0, time.UTC)},
		{"12-05-2023, 22:15", time.Date(2023, 5, 12, 22, 15, 0, 0, time.UTC)},
		{"12-05-23, 22:15", time.Date(2023, 5, 12, 22, 15, 0, 0, time.UTC)},
		{"5/12/23, 10:15 am", time.Date(2023, 12, 5, 10, 15, 0, 0, time.UTC)},
		{"5/12/23, 10:15pm", time.Date(2023, 12, 5, 22, 15, 0, 0, time.UTC)},
		{"12/05/2023, 12:30 AM", time.Date(2023, 5, 12, 0, 30, 0, 0, time.UTC)},
		{"1/2/24, 9:05 PM", time.Date(2024, 2, 1, 21, 5, 0, 0, time.UTC)},
		{"12/05/2023 10:15", time.Date(2023, 5, 12, 10, 15, 0, 0, time.UTC)},
		// day 25 cannot be a day-first month, so the month-first layouts win
		{"12/25/2023, 9:05 PM", time.Date(2023, 12, 25, 21, 5, 0, 0, time.UTC)},
		{"12/25/2023, 21:05", time.Date(2023, 12, 25, 21, 5, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		ts := ResolveTimestamp(tc.raw)
		got, ok := ts.Time()
		if !ok {
			t.Errorf("%q: expected resolved timestamp", tc.raw)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestResolveTimestampUnresolved(t *testing.T) {
	for _, raw := range []string{"13/14/2023, 25:99", "31/02/2023, 10:00", "", "not a date"} {
		if ts := ResolveTimestamp(raw); ts.IsResolved() {
			t.Errorf("%q: expected unresolved, got %v", raw, ts)
		}
	}
}

func TestResolveTimestampDateOrder(t *testing.T) {
	raw := "05/06/2023, 10:00"

	dayFirst, _ := Parser{}.ResolveTimestamp(raw).Time()
	if dayFirst.Month() != time.June || dayFirst.Day() != 5 {
		t.Errorf("day-first: expected 5 June, got %v", dayFirst)
	}

	monthFirst, _ := Parser{Order: MonthFirst}.ResolveTimestamp(raw).Time()
	if monthFirst.Month() != time.May || monthFirst.Day() != 6 {
		t.Errorf("month-first: expected 6 May, got %v", monthFirst)
	}
}

func TestResolveTimestampLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got, ok := Parser{Location: loc}.ResolveTimestamp("12/05/2023, 10:15").Time()
	if !ok {
		t.Fatal("expected resolved timestamp")
	}
	if got.Location() != loc || got.Hour() != 10 {
		t.Errorf("expected 10:15 wall clock in %v, got %v", loc, got)
	}
}

func TestResolveTimestampLenientFallback(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2023-05-12 10:15", time.Date(2023, 5, 12, 10, 15, 0, 0, time.UTC)},
		{"12 May 2023 10:15", time.Date(2023, 5, 12, 10, 15, 0, 0, time.UTC)},
		{"12/05/2023 10:15:30", time.Date(2023, 5, 12, 10, 15, 30, 0, time.UTC)},
	}
	for _, tc := range cases {
		if _, ok := canonical(tc.raw); ok {
			t.Fatalf("%q: strict layouts should not apply", tc.raw)
		}
		got, ok := ResolveTimestamp(tc.raw).Time()
		if !ok {
			t.Errorf("%q: expected lenient resolution", tc.raw)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestResolveTimestampLenientDateOrder(t *testing.T) {
	// seconds keep this off the strict layouts
	raw := "04/02/2014 03:00:51"

	dayFirst, ok := Parser{}.ResolveTimestamp(raw).Time()
	if !ok || dayFirst.Month() != time.February || dayFirst.Day() != 4 {
		t.Errorf("day-first: expected 4 February, got %v (resolved %v)", dayFirst, ok)
	}
	monthFirst, ok := Parser{Order: MonthFirst}.ResolveTimestamp(raw).Time()
	if !ok || monthFirst.Month() != time.April || monthFirst.Day() != 2 {
		t.Errorf("month-first: expected 2 April, got %v (resolved %v)", monthFirst, ok)
	}
}

func TestCanonicalTwelveHourRange(t *testing.T) {
	cases := map[string]bool{
		"12/05/2023, 0:15 PM":  false,
		"12/05/2023, 13:15 pm": false,
		"12/05/2023, 12:15 PM": true,
		"12/05/2023, 1:05 am":  true,
		"12/05/2023, 0:15":     true,
	}
	for raw, want := range cases {
		if _, ok := canonical(raw); ok != want {
			t.Errorf("canonical(%q) ok = %v, want %v", raw, ok, want)
		}
	}
}

func TestLayoutsOrder(t *testing.T) {
	day := Layouts(DayFirst)
	if len(day) != 16 || day[0] != "2/1/2006, 15:04" || day[8] != "1/2/2006, 15:04" {
		t.Errorf("unexpected day-first order: %v", day)
	}
	month := Layouts(MonthFirst)
	if month[0] != "1/2/2006, 15:04" || month[8] != "2/1/2006, 15:04" {
		t.Errorf("unexpected month-first order: %v", month)
	}
}

func TestParseDateOrder(t *testing.T) {
	cases := map[string]DateOrder{"": DayFirst, "day-first": DayFirst, "MDY": MonthFirst, "month-first": MonthFirst}
	for in, want := range cases {
		got, err := ParseDateOrder(in)
		if err != nil || got != want {
			t.Errorf("ParseDateOrder(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDateOrder("sideways"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestSegmentText(t *testing.T) {
	raw := "preamble\n12/05/2023, 10:15 - Alice: a\n\n12/05/2023, 10:16 - Bob: b"
	segs := SegmentText(raw)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].RawTimestamp != "12/05/2023, 10:15" {
		t.Errorf("unexpected raw timestamp %q", segs[0].RawTimestamp)
	}
	if segs[0].Text != "Alice: a\n" {
		t.Errorf("expected blank line kept inside text, got %q", segs[0].Text)
	}
	if segs[0].Line != 2 || segs[1].Line != 4 {
		t.Errorf("unexpected lines %d, %d", segs[0].Line, segs[1].Line)
	}
}

func TestAttribute(t *testing.T) {
	cases := []struct {
		text, sender, body string
	}{
		{"Alice: hi", "Alice", "hi"},
		{"+1 555 0100: number sender", "+1 555 0100", "number sender"},
		{"Alice: ", "Alice", ""},
		{"Alice joined using this group's invite link", string(GroupNotification), "Alice joined using this group's invite link"},
		{"Alice:no space", string(GroupNotification), "Alice:no space"},
		{"Re: subject: body", "Re", "subject: body"},
	}
	for _, tc := range cases {
		sender, body := Attribute(tc.text)
		if string(sender) != tc.sender || body != tc.body {
			t.Errorf("Attribute(%q) = %q, %q; want %q, %q", tc.text, sender, body, tc.sender, tc.body)
		}
	}
}

func TestEnrichUnresolved(t *testing.T) {
	if c := Enrich(Unresolved); c != nil {
		t.Errorf("expected nil calendar, got %+v", c)
	}
}
