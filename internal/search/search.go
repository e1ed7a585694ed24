package search

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatx/internal/index"
)

type Result struct {
	ExportKey  string  `json:"export_key"`
	Idx        int     `json:"index"` // -1 for an export-level result
	Ts         string  `json:"timestamp"`
	Title      string  `json:"title"`
	UpdatedAt  string  `json:"updated_at"`
	Sender     string  `json:"sender"`
	Snippet    string  `json:"snippet"`
	LineNumber int     `json:"line"`
	Rank       float64 `json:"rank"`
}

type Options struct {
	Query                string
	Export               string // "" = all exports
	Sender               string // "" = all senders
	Since                string // "" = no filter, e.g. "2024-01-01"
	IncludeNotifications bool
	OnePerExport         bool
	Limit                int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ftsQuery quotes every whitespace-separated term so punctuation inside chat
// text ("end-to-end", "it's") is not read as FTS5 syntax. A trailing '*'
// keeps prefix matching.
func ftsQuery(q string) string {
	var terms []string
	for _, f := range strings.Fields(q) {
		prefix := strings.HasSuffix(f, "*") && len(f) > 1
		f = strings.TrimSuffix(f, "*")
		f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		if prefix {
			f += "*"
		}
		terms = append(terms, f)
	}
	return strings.Join(terms, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches q as a literal substring.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	qRunes := []rune(strings.ToLower(query))

	runePos := -1
	if len(lower) == len(runes) {
		runePos = indexRunes(lower, qRunes)
	}
	if runePos < 0 {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}

	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// Search finds messages whose body matches opts.Query, best match first.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	origLimit := opts.Limit
	if opts.OnePerExport {
		// Fetch more results before dedup so we still have enough after
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.OnePerExport {
		return results, nil
	}

	// keep only the best-ranked result per export
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.ExportKey] {
			continue
		}
		seen[r.ExportKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any

	if opts.Export != "" {
		conditions = append(conditions, "m.export_key = ?")
		args = append(args, opts.Export)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if !opts.IncludeNotifications {
		conditions = append(conditions, "m.is_notification = 0")
	}
	// unresolved messages have an empty date and drop out here
	if opts.Since != "" {
		conditions = append(conditions, "m.date_only >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{ftsQuery(opts.Query)}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.export_key,
			m.idx,
			m.ts,
			e.title,
			e.updated_at,
			m.sender,
			snippet(messages_fts, 0, '>>>','<<<', '...', 20) as snip,
			m.line_number,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN exports e ON m.export_key = e.export_key
		WHERE %s
		ORDER BY rank, m.export_key, m.idx
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{`m.body LIKE ? ESCAPE '\'`}
	args := []any{likePattern(opts.Query)}

	more, moreArgs := filters(opts)
	conditions = append(conditions, more...)
	args = append(args, moreArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.export_key,
			m.idx,
			m.ts,
			e.title,
			e.updated_at,
			m.sender,
			m.body,
			m.line_number
		FROM messages m
		JOIN exports e ON m.export_key = e.export_key
		WHERE %s
		ORDER BY m.ts DESC, m.export_key, m.idx
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(
			&r.ExportKey, &r.Idx, &r.Ts, &r.Title, &r.UpdatedAt,
			&r.Sender, &body, &r.LineNumber,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(body, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ExportKey, &r.Idx, &r.Ts, &r.Title, &r.UpdatedAt,
			&r.Sender, &r.Snippet, &r.LineNumber, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns one export-level result per export, most recently active
// first. opts.Query, when set, filters on title, participants and summary;
// opts.Sender keeps exports that sender wrote in.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	exports, err := db.AllExports()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(opts.Query))
	var results []Result
	for _, e := range exports {
		if opts.Since != "" && e.UpdatedAt < opts.Since {
			continue
		}
		if opts.Sender != "" && !slices.Contains(e.Participants, opts.Sender) {
			continue
		}
		if q != "" {
			haystack := strings.ToLower(e.Title + "\n" + strings.Join(e.Participants, "\n") + "\n" + e.Summary)
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		results = append(results, Result{
			ExportKey: e.ExportKey,
			Idx:       -1,
			Ts:        e.UpdatedAt,
			Title:     e.Title,
			UpdatedAt: e.UpdatedAt,
			Sender:    strings.Join(e.Participants, ", "),
			Snippet:   e.Summary,
		})
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	return results, nil
}
