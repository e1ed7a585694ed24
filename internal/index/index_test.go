package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

const family = "export header\n" +
	"12/05/2023, 10:15 - Messages and calls are end-to-end encrypted.\n" +
	"12/05/2023, 10:16 - Alice: Hello there\n" +
	"12/05/2023, 10:17 - Bob: Hi! Two lines\nof text here\n" +
	"31/02/2023, 10:00 - Bob: impossible date\n" +
	"13/05/2023, 23:40 - Alice: late night pizza\n"

const work = "01/06/2023, 09:00 - Carol: standup in five\n" +
	"01/06/2023, 09:01 - Dave: on my way\n"

func writeExport(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "chatx.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIndexAll(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "family", "WhatsApp Chat with Family.txt"), family)
	writeExport(t, filepath.Join(root, "work.txt"), work)
	writeExport(t, filepath.Join(root, "notes.txt"), "no anchors in here\n")

	db := openTestDB(t)
	opts := Options{Roots: []string{root}, Include: []string{"**/*.txt"}}

	stats, err := IndexAll(db, opts)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Scanned != 3 || stats.Updated != 2 || stats.Empty != 1 || stats.Errors != 0 {
		t.Errorf("unexpected first run stats: %s", stats)
	}

	if n, _ := db.ExportCount(); n != 2 {
		t.Errorf("expected 2 exports, got %d", n)
	}
	if n, _ := db.MessageCount(); n != 7 {
		t.Errorf("expected 7 messages, got %d", n)
	}

	stats, err = IndexAll(db, opts)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 0 || stats.Skipped != 2 {
		t.Errorf("expected unchanged files to be skipped, got %s", stats)
	}

	if err := os.Remove(filepath.Join(root, "work.txt")); err != nil {
		t.Fatal(err)
	}
	stats, err = IndexAll(db, opts)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 1 {
		t.Errorf("expected 1 pruned export, got %s", stats)
	}
	if e, _ := db.GetExportByKey("chat:work"); e != nil {
		t.Errorf("expected chat:work to be pruned, got %+v", e)
	}
}

func TestIndexAllParserChangeForcesReindex(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "work.txt"), work)

	db := openTestDB(t)
	opts := Options{Roots: []string{root}, Include: []string{"*.txt"}}
	if _, err := IndexAll(db, opts); err != nil {
		t.Fatal(err)
	}

	opts.Parser = parse.Parser{Order: parse.MonthFirst}
	stats, err := IndexAll(db, opts)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Errorf("expected re-index after date order change, got %s", stats)
	}

	e, err := db.GetExportByKey("chat:work")
	if err != nil || e == nil {
		t.Fatalf("expected export, got %v, %v", e, err)
	}
	if e.CreatedAt != "2023-01-06T09:00:00Z" {
		t.Errorf("expected month-first created_at, got %q", e.CreatedAt)
	}
}

func TestExportQueries(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "family", "WhatsApp Chat with Family.txt"), family)
	writeExport(t, filepath.Join(root, "work.txt"), work)

	db := openTestDB(t)
	if _, err := IndexAll(db, Options{Roots: []string{root}, Include: []string{"**/*.txt"}}); err != nil {
		t.Fatal(err)
	}

	e, err := db.GetExportByKey("chat:family/WhatsApp Chat with Family")
	if err != nil || e == nil {
		t.Fatalf("expected export, got %v, %v", e, err)
	}
	if e.Title != "Family" || e.MessageCount != 5 || e.Unresolved != 1 {
		t.Errorf("unexpected export %+v", e)
	}
	if len(e.Participants) != 2 || e.Participants[0] != "Alice" || e.Participants[1] != "Bob" {
		t.Errorf("unexpected participants %v", e.Participants)
	}

	all, err := db.AllExports()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ExportKey != "chat:work" {
		t.Errorf("expected newest export first, got %+v", all)
	}

	if missing, err := db.GetExportByKey("chat:nope"); missing != nil || err != nil {
		t.Errorf("expected nil, nil for missing export, got %v, %v", missing, err)
	}
}

func TestGetMessagesWindow(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "family.txt"), family)

	db := openTestDB(t)
	if _, err := IndexAll(db, Options{Roots: []string{root}, Include: []string{"*.txt"}}); err != nil {
		t.Fatal(err)
	}

	msgs, hit, start, total, err := db.GetMessagesWindow("chat:family", 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || start != 1 || len(msgs) != 3 || hit != 1 {
		t.Errorf("unexpected window: len=%d hit=%d start=%d total=%d", len(msgs), hit, start, total)
	}
	if msgs[hit].Body != "Hi! Two lines\nof text here" {
		t.Errorf("unexpected hit body %q", msgs[hit].Body)
	}

	msgs, hit, start, _, err = db.GetMessagesWindow("chat:family", -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 5 || hit != -1 || start != 0 {
		t.Errorf("expected whole export without a hit, got len=%d hit=%d start=%d", len(msgs), hit, start)
	}

	page, err := db.GetMessagesPage("chat:family", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].Idx != 3 || page[0].Ts != "" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestLoadRecords(t *testing.T) {
	root := t.TempDir()
	writeExport(t, filepath.Join(root, "family.txt"), family)

	db := openTestDB(t)
	if _, err := IndexAll(db, Options{Roots: []string{root}, Include: []string{"*.txt"}}); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadRecords("chat:family")
	if err != nil {
		t.Fatal(err)
	}
	want := parse.Parse(family)
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Index != w.Index || g.Line != w.Line || g.Offset != w.Offset || g.Sender != w.Sender || g.Body != w.Body || g.RawTimestamp != w.RawTimestamp {
			t.Errorf("record %d: got %+v, want %+v", i, g, w)
		}
		gt, gok := g.Timestamp.Time()
		wt, wok := w.Timestamp.Time()
		if gok != wok || !gt.Equal(wt) {
			t.Errorf("record %d: timestamp %v, want %v", i, g.Timestamp, w.Timestamp)
		}
		if (g.Calendar == nil) != (w.Calendar == nil) || g.Calendar != nil && *g.Calendar != *w.Calendar {
			t.Errorf("record %d: calendar %+v, want %+v", i, g.Calendar, w.Calendar)
		}
	}

	if got[3].Timestamp.IsResolved() {
		t.Error("expected impossible date to stay unresolved")
	}
	if last, _ := got[4].Timestamp.Time(); !last.Equal(time.Date(2023, 5, 13, 23, 40, 0, 0, time.UTC)) {
		t.Errorf("unexpected last timestamp %v", last)
	}
}

func TestOpenDBMemory(t *testing.T) {
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if n, err := db.ExportCount(); err != nil || n != 0 {
		t.Errorf("expected empty index, got %d, %v", n, err)
	}
}
