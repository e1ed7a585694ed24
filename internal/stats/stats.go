// Package stats aggregates parsed message records into the figures shown by
// `chatx stats` and the HTTP API.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
	"mvdan.cc/xurls/v2"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// Overall selects every sender.
const Overall = "Overall"

const (
	defaultBusyUsers   = 5
	defaultCommonWords = 20
)

var urlRe = xurls.Relaxed()

// mediaPlaceholders are the bodies exporters write instead of attachments.
var mediaPlaceholders = map[string]struct{}{
	"<media omitted>":  {},
	"image omitted":    {},
	"video omitted":    {},
	"audio omitted":    {},
	"sticker omitted":  {},
	"gif omitted":      {},
	"document omitted": {},
}

type Totals struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

type Point struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Share struct {
	Sender  string  `json:"sender"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// HeatmapGrid counts messages per weekday (rows, Monday first) and hour
// bucket (columns, "00-1" first).
type HeatmapGrid struct {
	Days    []string `json:"days"`
	Periods []string `json:"periods"`
	Counts  [][]int  `json:"counts"`
}

type Report struct {
	User          string      `json:"user"`
	Totals        Totals      `json:"totals"`
	Unresolved    int         `json:"unresolved"`
	Monthly       []Point     `json:"monthly_timeline"`
	Daily         []Point     `json:"daily_timeline"`
	WeekActivity  []Point     `json:"week_activity"`
	MonthActivity []Point     `json:"month_activity"`
	Heatmap       HeatmapGrid `json:"heatmap"`
	BusyUsers     []Share     `json:"busy_users,omitempty"`
	CommonWords   []Point     `json:"common_words"`
	Emoji         []Point     `json:"emoji"`
}

// Build computes every statistic for user ("" or Overall for everyone). top
// limits the busy-user and common-word lists; zero picks the defaults.
func Build(records []parse.MessageRecord, user string, top int) Report {
	sel := Select(records, user)
	r := Report{
		User:          displayUser(user),
		Totals:        Fetch(sel),
		Monthly:       MonthlyTimeline(sel),
		Daily:         DailyTimeline(sel),
		WeekActivity:  WeekActivity(sel),
		MonthActivity: MonthActivity(sel),
		Heatmap:       Heatmap(sel),
		CommonWords:   CommonWords(sel, orDefault(top, defaultCommonWords)),
		Emoji:         Emoji(sel),
	}
	for _, rec := range sel {
		if !rec.Timestamp.IsResolved() {
			r.Unresolved++
		}
	}
	if r.User == Overall {
		r.BusyUsers = BusyUsers(records, orDefault(top, defaultBusyUsers))
	}
	return r
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func displayUser(user string) string {
	if user == "" || user == Overall {
		return Overall
	}
	return user
}

// Select returns the records written by user, or all records for Overall.
func Select(records []parse.MessageRecord, user string) []parse.MessageRecord {
	if displayUser(user) == Overall {
		return records
	}
	var out []parse.MessageRecord
	for _, r := range records {
		if string(r.Sender) == user {
			out = append(out, r)
		}
	}
	return out
}

// Senders lists the distinct authors in first-appearance order.
func Senders(records []parse.MessageRecord) []string {
	seen := make(map[parse.Sender]struct{})
	var out []string
	for _, r := range records {
		if r.Sender.IsNotification() {
			continue
		}
		if _, ok := seen[r.Sender]; !ok {
			seen[r.Sender] = struct{}{}
			out = append(out, string(r.Sender))
		}
	}
	return out
}

func IsMedia(body string) bool {
	body = strings.ToLower(strings.Trim(body, " \u200e"))
	_, ok := mediaPlaceholders[body]
	return ok
}

// Fetch counts messages, words, media placeholders and links.
func Fetch(records []parse.MessageRecord) Totals {
	t := Totals{Messages: len(records)}
	for _, r := range records {
		t.Words += len(strings.Fields(r.Body))
		if IsMedia(r.Body) {
			t.Media++
		}
		t.Links += len(urlRe.FindAllString(r.Body, -1))
	}
	return t
}

// MonthlyTimeline counts messages per calendar month, oldest first, labelled
// "May-2023".
func MonthlyTimeline(records []parse.MessageRecord) []Point {
	type ym struct{ year, month int }
	counts := make(map[ym]int)
	for _, r := range records {
		if c := r.Calendar; c != nil {
			counts[ym{c.Year, c.MonthNumber}]++
		}
	}
	keys := make([]ym, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	out := make([]Point, 0, len(keys))
	for _, k := range keys {
		label := time.Month(k.month).String() + "-" + strconv.Itoa(k.year)
		out = append(out, Point{Label: label, Count: counts[k]})
	}
	return out
}

// DailyTimeline counts messages per date, oldest first.
func DailyTimeline(records []parse.MessageRecord) []Point {
	counts := make(map[string]int)
	for _, r := range records {
		if c := r.Calendar; c != nil {
			counts[c.DateOnly]++
		}
	}
	out := make([]Point, 0, len(counts))
	for d, n := range counts {
		out = append(out, Point{Label: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekActivity counts messages per weekday, busiest first.
func WeekActivity(records []parse.MessageRecord) []Point {
	return ranked(records, weekdays, func(c *parse.Calendar) string { return c.DayName })
}

// MonthActivity counts messages per month name, busiest first.
func MonthActivity(records []parse.MessageRecord) []Point {
	months := make([]string, 12)
	for i := range months {
		months[i] = time.Month(i + 1).String()
	}
	return ranked(records, months, func(c *parse.Calendar) string { return c.MonthName })
}

// ranked counts key(calendar) and orders by count, ties in the order of
// labels. Labels without messages are left out.
func ranked(records []parse.MessageRecord, labels []string, key func(*parse.Calendar) string) []Point {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Calendar != nil {
			counts[key(r.Calendar)]++
		}
	}
	var out []Point
	for _, l := range labels {
		if n := counts[l]; n > 0 {
			out = append(out, Point{Label: l, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Periods lists the 24 hour-bucket labels in clock order.
func Periods() []string {
	out := make([]string, 24)
	for h := range out {
		out[h] = parse.HourBucket(h)
	}
	return out
}

// Heatmap counts messages per weekday and hour bucket.
func Heatmap(records []parse.MessageRecord) HeatmapGrid {
	g := HeatmapGrid{Days: weekdays, Periods: Periods(), Counts: make([][]int, len(weekdays))}
	for i := range g.Counts {
		g.Counts[i] = make([]int, 24)
	}
	for _, r := range records {
		c := r.Calendar
		if c == nil {
			continue
		}
		day := (int(weekdayOf(c.DayName)) + 6) % 7 // Monday = 0
		g.Counts[day][c.Hour]++
	}
	return g
}

func weekdayOf(name string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d
		}
	}
	return time.Sunday
}

// BusyUsers returns the top senders by message count with their share of all
// authored messages, rounded to two decimals. Notifications are left out.
func BusyUsers(records []parse.MessageRecord, top int) []Share {
	counts := make(map[string]int)
	total := 0
	for _, r := range records {
		if r.Sender.IsNotification() {
			continue
		}
		counts[string(r.Sender)]++
		total++
	}
	order := Senders(records)
	out := make([]Share, 0, len(order))
	for _, s := range order {
		pct := float64(counts[s]) / float64(total) * 100
		out = append(out, Share{Sender: s, Count: counts[s], Percent: math.Round(pct*100) / 100})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// CommonWords returns the top most frequent words, skipping stop words,
// media placeholders and notifications.
func CommonWords(records []parse.MessageRecord, top int) []Point {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Sender.IsNotification() || IsMedia(r.Body) {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(r.Body)) {
			w = strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
			if w == "" || isStopWord(w) || urlRe.MatchString(w) {
				continue
			}
			counts[w]++
		}
	}
	return topN(counts, top)
}

// Emoji counts emoji grapheme clusters, most used first. Keycaps, flags and
// skin-tone sequences count as one emoji each.
func Emoji(records []parse.MessageRecord) []Point {
	counts := make(map[string]int)
	for _, r := range records {
		if !gomoji.ContainsEmoji(r.Body) {
			continue
		}
		g := uniseg.NewGraphemes(r.Body)
		for g.Next() {
			if cluster := g.Str(); gomoji.ContainsEmoji(cluster) {
				counts[cluster]++
			}
		}
	}
	return topN(counts, 0)
}

func topN(counts map[string]int, n int) []Point {
	out := make([]Point, 0, len(counts))
	for k, v := range counts {
		out = append(out, Point{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
