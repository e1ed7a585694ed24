package parse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const maxSummarySize = 200

// afterStat runs between the stat and the read in ParseFile. Tests only.
var afterStat func(path string)

// ErrInvalidEncoding is returned when export bytes are not valid UTF-8.
var ErrInvalidEncoding = errors.New("export is not valid UTF-8 text")

// Parser turns exported chat text into message records. The zero value
// resolves day-first and interprets timestamps as UTC.
type Parser struct {
	Order    DateOrder
	Location *time.Location
}

func (p Parser) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Parse returns one record per timestamp anchor in raw, in document order.
// Empty or anchor-free input yields no records and no error. A byte order
// mark sits before the first anchor and is dropped with the rest of the
// preamble.
func (p Parser) Parse(raw string) []MessageRecord {
	segments := SegmentText(raw)
	records := make([]MessageRecord, 0, len(segments))
	for i, seg := range segments {
		ts := p.ResolveTimestamp(seg.RawTimestamp)
		sender, body := Attribute(seg.Text)
		records = append(records, MessageRecord{
			Index:        i,
			Offset:       seg.Offset,
			Line:         seg.Line,
			RawTimestamp: seg.RawTimestamp,
			Timestamp:    ts,
			Sender:       sender,
			Body:         body,
			Calendar:     Enrich(ts),
		})
	}
	return records
}

// ParseBytes validates the encoding before parsing. Undecodable input is the
// one condition that is reported instead of degraded.
func (p Parser) ParseBytes(data []byte) ([]MessageRecord, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return p.Parse(string(data)), nil
}

// ParseFile parses one export file. root is the scan root the file was found
// under and is used to derive a stable export key.
func (p Parser) ParseFile(filePath, root string) (*ParseResult, error) {
	// stat first: the recorded mtime/size must never postdate the content
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if afterStat != nil {
		afterStat(filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	records, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Meta:    PathMeta(filePath, root),
		Records: records,
	}
	result.Meta.Mtime = info.ModTime()
	result.Meta.Size = info.Size()
	summarize(&result.Meta, records)
	return result, nil
}

// PathMeta fills the parts of ExportMeta that depend only on the path.
func PathMeta(filePath, root string) ExportMeta {
	return ExportMeta{
		ExportKey: ExportKey(filePath, root),
		FilePath:  filePath,
		Title:     Title(filePath),
	}
}

// ExportKey derives "chat:<path relative to root, no extension>".
func ExportKey(filePath, root string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil || root == "" || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(filePath)
	}
	rel = filepath.ToSlash(rel)
	return "chat:" + strings.TrimSuffix(rel, filepath.Ext(rel))
}

// Title guesses a human name for an export from its file name, e.g.
// "WhatsApp Chat with Alice.txt" -> "Alice". iOS exports are always named
// "_chat.txt", so their parent directory is used instead.
func Title(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if base == "_chat" {
		return filepath.Base(filepath.Dir(filePath))
	}
	for _, prefix := range []string{"WhatsApp Chat with ", "WhatsApp Chat - "} {
		if strings.HasPrefix(base, prefix) {
			return strings.TrimPrefix(base, prefix)
		}
	}
	return base
}

func summarize(meta *ExportMeta, records []MessageRecord) {
	seen := make(map[Sender]struct{})
	for _, r := range records {
		t, ok := r.Timestamp.Time()
		if !ok {
			meta.Unresolved++
		} else {
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = t
			}
			meta.UpdatedAt = t
		}

		if r.Sender.IsNotification() {
			continue
		}
		if _, ok := seen[r.Sender]; !ok {
			seen[r.Sender] = struct{}{}
			meta.Participants = append(meta.Participants, string(r.Sender))
		}
		if meta.Summary == "" && strings.TrimSpace(r.Body) != "" {
			s := r.Body
			if len(s) > maxSummarySize {
				s = truncateUTF8(s, maxSummarySize)
			}
			meta.Summary = strings.ReplaceAll(s, "\n", " ")
		}
	}
}

func truncateUTF8(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var defaultParser Parser

// Parse runs the default day-first, UTC parser.
func Parse(raw string) []MessageRecord {
	return defaultParser.Parse(raw)
}

func ResolveTimestamp(raw string) Timestamp {
	return defaultParser.ResolveTimestamp(raw)
}

func ParseFile(filePath, root string) (*ParseResult, error) {
	return defaultParser.ParseFile(filePath, root)
}
