package tui

import (
	"strings"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/search"
)

// filter is the parsed input line. from:NAME and since:YYYY-MM-DD narrow the
// results and everything else is query text. Quote names with spaces:
// from:"Alice Smith".
type filter struct {
	text   string
	sender string
	since  string
}

func parseFilter(line string) filter {
	var f filter
	var words []string
	for _, w := range splitWords(line) {
		switch {
		case strings.HasPrefix(w, "from:") && len(w) > len("from:"):
			f.sender = strings.Trim(w[len("from:"):], `"`)
		case strings.HasPrefix(w, "since:") && len(w) > len("since:"):
			f.since = w[len("since:"):]
		default:
			words = append(words, w)
		}
	}
	f.text = strings.Join(words, " ")
	return f
}

// splitWords splits on spaces outside double quotes. Quotes are kept.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	quoted := false
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && !quoted:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// load picks the result source for the browser state: full-text hits when
// there is query text, the scoped export's latest messages, or the export
// list.
func load(db *index.DB, mode tuiMode, scope *exportScope, opts search.Options) ([]search.Result, error) {
	switch {
	case strings.TrimSpace(opts.Query) != "":
		return search.Search(db, opts)
	case scope != nil:
		return latestMessages(db, scope, opts)
	case mode == modeList:
		return search.ListAll(db, opts)
	}
	return nil, nil
}

// latestMessages lists one export newest first, applying the sender, date
// and notification filters.
func latestMessages(db *index.DB, scope *exportScope, opts search.Options) ([]search.Result, error) {
	rows, err := db.GetMessages(scope.key)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	var out []search.Result
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := rows[i]
		if row.IsNotification && !opts.IncludeNotifications {
			continue
		}
		if opts.Sender != "" && row.Sender != opts.Sender {
			continue
		}
		// unresolved timestamps never pass a date filter
		if opts.Since != "" && (len(row.Ts) < 10 || row.Ts[:10] < opts.Since) {
			continue
		}
		out = append(out, search.Result{
			ExportKey:  row.ExportKey,
			Idx:        row.Idx,
			Ts:         row.Ts,
			Title:      scope.title,
			Sender:     row.Sender,
			Snippet:    row.Body,
			LineNumber: row.LineNumber,
		})
	}
	return out, nil
}
