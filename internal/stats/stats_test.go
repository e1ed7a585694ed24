package stats

import (
	"reflect"
	"testing"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

const chat = "12/05/2023, 10:15 - Messages and calls are end-to-end encrypted.\n" +
	"12/05/2023, 10:16 - Alice: pizza tonight? https://example.com/menu\n" +
	"12/05/2023, 10:17 - Bob: <Media omitted>\n" +
	"12/05/2023, 23:40 - Alice: 😂😂 pizza 👍🏽\n" +
	"31/02/2023, 10:00 - Bob: impossible date\n" +
	"01/06/2023, 09:00 - Alice: pizza again\n"

func TestBuildOverall(t *testing.T) {
	r := Build(parse.Parse(chat), "", 0)

	if r.User != Overall {
		t.Errorf("expected Overall, got %q", r.User)
	}
	if want := (Totals{Messages: 6, Words: 18, Media: 1, Links: 1}); r.Totals != want {
		t.Errorf("totals = %+v, want %+v", r.Totals, want)
	}
	if r.Unresolved != 1 {
		t.Errorf("expected 1 unresolved, got %d", r.Unresolved)
	}

	wantMonthly := []Point{{"May-2023", 4}, {"June-2023", 1}}
	if !reflect.DeepEqual(r.Monthly, wantMonthly) {
		t.Errorf("monthly = %v, want %v", r.Monthly, wantMonthly)
	}
	wantDaily := []Point{{"2023-05-12", 4}, {"2023-06-01", 1}}
	if !reflect.DeepEqual(r.Daily, wantDaily) {
		t.Errorf("daily = %v, want %v", r.Daily, wantDaily)
	}
	wantWeek := []Point{{"Friday", 4}, {"Thursday", 1}}
	if !reflect.DeepEqual(r.WeekActivity, wantWeek) {
		t.Errorf("week = %v, want %v", r.WeekActivity, wantWeek)
	}
	wantMonth := []Point{{"May", 4}, {"June", 1}}
	if !reflect.DeepEqual(r.MonthActivity, wantMonth) {
		t.Errorf("month = %v, want %v", r.MonthActivity, wantMonth)
	}

	if r.Heatmap.Counts[4][10] != 3 || r.Heatmap.Counts[4][23] != 1 || r.Heatmap.Counts[3][9] != 1 {
		t.Errorf("unexpected heatmap %v", r.Heatmap.Counts)
	}
	if r.Heatmap.Periods[0] != "00-1" || r.Heatmap.Periods[23] != "23-00" {
		t.Errorf("unexpected periods %v", r.Heatmap.Periods)
	}

	wantBusy := []Share{{"Alice", 3, 60}, {"Bob", 2, 40}}
	if !reflect.DeepEqual(r.BusyUsers, wantBusy) {
		t.Errorf("busy = %v, want %v", r.BusyUsers, wantBusy)
	}

	wantWords := []Point{{"pizza", 3}, {"date", 1}, {"impossible", 1}, {"tonight", 1}}
	if !reflect.DeepEqual(r.CommonWords, wantWords) {
		t.Errorf("words = %v, want %v", r.CommonWords, wantWords)
	}

	wantEmoji := []Point{{"😂", 2}, {"👍🏽", 1}}
	if !reflect.DeepEqual(r.Emoji, wantEmoji) {
		t.Errorf("emoji = %v, want %v", r.Emoji, wantEmoji)
	}
}

func TestBuildSingleUser(t *testing.T) {
	r := Build(parse.Parse(chat), "Alice", 0)

	if r.Totals.Messages != 3 {
		t.Errorf("expected 3 messages for Alice, got %d", r.Totals.Messages)
	}
	if r.BusyUsers != nil {
		t.Errorf("expected no busy users for a single sender, got %v", r.BusyUsers)
	}
	if len(r.Monthly) != 2 || r.Monthly[0].Count != 2 {
		t.Errorf("unexpected monthly timeline %v", r.Monthly)
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, Overall, 0)

	if r.Totals != (Totals{}) || len(r.Monthly) != 0 || len(r.BusyUsers) != 0 || len(r.Emoji) != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
	if len(r.Heatmap.Counts) != 7 || len(r.Heatmap.Counts[0]) != 24 {
		t.Errorf("expected a 7x24 heatmap, got %v", r.Heatmap.Counts)
	}
}

func TestBusyUsersTop(t *testing.T) {
	recs := parse.Parse("1/1/24, 10:00 - A: x\n1/1/24, 10:01 - B: y\n1/1/24, 10:02 - C: z\n1/1/24, 10:03 - C: w\n")
	got := BusyUsers(recs, 2)
	if len(got) != 2 || got[0].Sender != "C" || got[0].Percent != 50 || got[1].Sender != "A" {
		t.Errorf("unexpected busy users %v", got)
	}
}

func TestIsMedia(t *testing.T) {
	for body, want := range map[string]bool{
		"<Media omitted>":        true,
		"\u200eimage omitted":    true,
		"sticker omitted":        true,
		"the image omitted here": false,
	} {
		if got := IsMedia(body); got != want {
			t.Errorf("IsMedia(%q) = %v, want %v", body, got, want)
		}
	}
}

func TestEmojiKeycapsAndSymbols(t *testing.T) {
	records := []parse.MessageRecord{
		{Body: "call me 1️⃣ #️⃣ now ⌘ ⏎ ⬚ ☺️"},
		{Body: "plain text, no emoji here"},
		{Body: "1️⃣ again"},
	}
	want := []Point{
		{"1️⃣", 2},
		{"#️⃣", 1},
		{"☺️", 1},
	}
	if got := Emoji(records); !reflect.DeepEqual(got, want) {
		t.Errorf("emoji = %v, want %v", got, want)
	}
}
