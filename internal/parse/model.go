package parse

import (
	"encoding/json"
	"time"
)

// Sender identifies who wrote a message. GroupNotification is reserved for
// system/group events that have no author.
type Sender string

const GroupNotification Sender = "group_notification"

func (s Sender) IsNotification() bool {
	return s == GroupNotification
}

// Timestamp is either a resolved point in time or unresolved.
// The zero value is unresolved.
type Timestamp struct {
	t        time.Time
	resolved bool
}

func Resolved(t time.Time) Timestamp {
	return Timestamp{t: t, resolved: true}
}

// Unresolved is returned when no known layout matched.
var Unresolved = Timestamp{}

func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.resolved
}

func (ts Timestamp) IsResolved() bool {
	return ts.resolved
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.resolved {
		return []byte("null"), nil
	}
	return json.Marshal(ts.t.Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*ts = Unresolved
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*ts = Resolved(t)
	return nil
}

// Segment is one boundary match and the text that follows it.
type Segment struct {
	RawTimestamp string
	Text         string
	Offset       int // byte offset of the timestamp in the source
	Line         int // 1-based line of the timestamp
}

// Calendar holds the fields derived from a resolved timestamp.
type Calendar struct {
	DateOnly        string `json:"date_only"`
	Year            int    `json:"year"`
	MonthNumber     int    `json:"month_number"`
	MonthName       string `json:"month_name"`
	DayOfMonth      int    `json:"day_of_month"`
	DayName         string `json:"day_name"`
	Hour            int    `json:"hour"`
	Minute          int    `json:"minute"`
	HourBucketLabel string `json:"hour_bucket_label"`
}

// MessageRecord is a single parsed message. Calendar is nil exactly when
// Timestamp is unresolved.
type MessageRecord struct {
	Index        int       `json:"index"`
	Offset       int       `json:"offset"`
	Line         int       `json:"line"`
	RawTimestamp string    `json:"raw_timestamp"`
	Timestamp    Timestamp `json:"timestamp"`
	Sender       Sender    `json:"sender"`
	Body         string    `json:"body"`
	Calendar     *Calendar `json:"calendar"`
}

type ExportMeta struct {
	ExportKey    string    `json:"export_key"`
	FilePath     string    `json:"file_path"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Summary      string    `json:"summary"`
	Mtime        time.Time `json:"mtime"`
	Size         int64     `json:"size"`
	Unresolved   int       `json:"unresolved"`
}

type ParseResult struct {
	Meta    ExportMeta
	Records []MessageRecord
}
