package index

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

type Options struct {
	Roots   []string
	Include []string
	Parser  parse.Parser
}

// IndexAll brings the index in line with the export files under opts.Roots.
// Unchanged files are skipped, files without any message are ignored and
// exports whose file disappeared are pruned. A file that fails to parse is
// counted and logged; it never aborts the run.
func IndexAll(db *DB, opts Options) (Stats, error) {
	var stats Stats

	if err := db.resetIfChanged("parser", parserSignature(opts.Parser)); err != nil {
		return stats, fmt.Errorf("parser settings: %w", err)
	}

	files, err := scan.ScanRoots(opts.Roots, opts.Include)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which exports we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := parse.ExportKey(fi.Path, fi.Root)
		if _, dup := seenKeys[key]; dup {
			log.Printf("[index] skip %s: export key %s already taken", fi.Path, key)
			stats.Skipped++
			continue
		}

		needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			log.Printf("[index] lookup %s: %v", key, err)
			continue
		}
		if !needs {
			seenKeys[key] = struct{}{}
			stats.Skipped++
			continue
		}

		result, err := opts.Parser.ParseFile(fi.Path, fi.Root)
		if err != nil {
			stats.Errors++
			log.Printf("[index] parse %s: %v", fi.Path, err)
			continue
		}
		if len(result.Records) == 0 {
			stats.Empty++
			continue
		}
		seenKeys[key] = struct{}{}

		if err := indexExport(db, result); err != nil {
			stats.Errors++
			log.Printf("[index] write %s: %v", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	// prune exports whose files no longer exist
	pruned, err := pruneExports(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func parserSignature(p parse.Parser) string {
	loc := "UTC"
	if p.Location != nil {
		loc = p.Location.String()
	}
	return p.Order.String() + "|" + loc
}

func needsUpdate(db *DB, exportKey string, mtime, size int64) (bool, error) {
	info, err := db.GetExportInfo(exportKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new export
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// indexExport replaces every row of one export in a single transaction.
func indexExport(db *DB, result *parse.ParseResult) error {
	meta := result.Meta
	participants, err := json.Marshal(meta.Participants)
	if err != nil {
		return err
	}
	if meta.Participants == nil {
		participants = []byte("[]")
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE export_key = ?", meta.ExportKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM exports WHERE export_key = ?", meta.ExportKey); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO exports (export_key, file_path, title, participants, created_at, updated_at, summary, unresolved, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ExportKey,
		meta.FilePath,
		meta.Title,
		string(participants),
		formatTime(meta.CreatedAt),
		formatTime(meta.UpdatedAt),
		meta.Summary,
		meta.Unresolved,
		meta.Mtime.Unix(),
		meta.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (export_key, idx, ts, raw_ts, sender, is_notification, body, line_number, byte_offset,
		                       date_only, year, month, day_name, hour, period)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range result.Records {
		var ts, dateOnly, month, dayName, period string
		var year int
		hour := -1
		if t, ok := r.Timestamp.Time(); ok && r.Calendar != nil {
			ts = formatTime(t)
			c := r.Calendar
			dateOnly, year, month, dayName, hour, period = c.DateOnly, c.Year, c.MonthName, c.DayName, c.Hour, c.HourBucketLabel
		}
		_, err := stmt.Exec(
			meta.ExportKey,
			r.Index,
			ts,
			r.RawTimestamp,
			string(r.Sender),
			r.Sender.IsNotification(),
			r.Body,
			r.Line,
			r.Offset,
			dateOnly, year, month, dayName, hour, period,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneExports(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllExportKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteExport(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

// LoadRecords rebuilds the parsed records of one export from the index.
// The calendar fields are derived again from the stored timestamp, which
// keeps its original UTC offset.
func (d *DB) LoadRecords(exportKey string) ([]parse.MessageRecord, error) {
	msgs, err := d.GetMessages(exportKey)
	if err != nil {
		return nil, err
	}
	records := make([]parse.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, m.Record())
	}
	return records, nil
}

// Record converts a stored row back into a parse.MessageRecord.
func (m MessageRow) Record() parse.MessageRecord {
	ts := parse.Unresolved
	if m.Ts != "" {
		if t, err := time.Parse(time.RFC3339, m.Ts); err == nil {
			ts = parse.Resolved(t)
		}
	}
	return parse.MessageRecord{
		Index:        m.Idx,
		Offset:       m.Offset,
		Line:         m.LineNumber,
		RawTimestamp: m.RawTs,
		Timestamp:    ts,
		Sender:       parse.Sender(m.Sender),
		Body:         m.Body,
		Calendar:     parse.Enrich(ts),
	}
}
