package parse

import (
	"regexp"
	"strings"
)

// space matches ASCII whitespace plus the no-break spaces some exporting
// clients put between the time and the meridiem.
const space = `[\s\x{00A0}\x{202F}]`

// boundaryRe matches a message anchor such as "12/05/2023, 10:15 - " or
// "5-12-23, 9:05 pm - ". Group 1 is the timestamp without the " - " tail.
var boundaryRe = regexp.MustCompile(
	`((?:\d{1,2}[/-]){2}\d{2,4},?` + space + `\d{1,2}:\d{2}(?:` + space + `?[APMapm]{2})?)` + space + `-` + space,
)

// SegmentText splits raw export text at every timestamp anchor. Text before
// the first anchor is dropped. Each segment's text runs up to the next anchor,
// minus the one line terminator that precedes it.
func SegmentText(raw string) []Segment {
	matches := boundaryRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(matches))
	line := 1
	lineFrom := 0
	for i, m := range matches {
		line += strings.Count(raw[lineFrom:m[0]], "\n")
		lineFrom = m[0]

		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segments = append(segments, Segment{
			RawTimestamp: raw[m[2]:m[3]],
			Text:         trimTerminator(raw[m[1]:end]),
			Offset:       m[0],
			Line:         line,
		})
	}
	return segments
}

func trimTerminator(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
