// Package highlight marks search matches inside rendered, ANSI-styled
// transcript text.
package highlight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var escapeSeq = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

type Result struct {
	Text  string
	Count int
	// Lines holds the index of every line with at least one match.
	Lines []int
}

// Apply wraps every case-insensitive occurrence of query in input with wrap.
// Matching runs on the visible text, so a word split by styling codes still
// matches; the codes themselves are kept in place.
func Apply(input, query string, wrap func(string) string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Text: input}
	}
	if wrap == nil {
		wrap = func(s string) string { return s }
	}
	q := strings.ToLower(query)

	var out strings.Builder
	var lines []int
	total := 0
	for lineNo, line := range strings.SplitAfter(input, "\n") {
		core := strings.TrimSuffix(line, "\n")
		rendered, n := applyLine(core, q, wrap)
		out.WriteString(rendered)
		if len(core) < len(line) {
			out.WriteByte('\n')
		}
		if n > 0 {
			lines = append(lines, lineNo)
			total += n
		}
	}
	return Result{Text: out.String(), Count: total, Lines: lines}
}

type segment struct {
	text   string
	escape bool
	// plainStart is the offset of text within the visible line.
	plainStart int
}

func applyLine(line, q string, wrap func(string) string) (string, int) {
	if !strings.Contains(strings.ToLower(ansi.Strip(line)), q) {
		return line, 0
	}

	var segs []segment
	var plain strings.Builder
	pos := 0
	for _, idx := range escapeSeq.FindAllStringIndex(line, -1) {
		if idx[0] > pos {
			segs = append(segs, segment{text: line[pos:idx[0]], plainStart: plain.Len()})
			plain.WriteString(line[pos:idx[0]])
		}
		segs = append(segs, segment{text: line[idx[0]:idx[1]], escape: true})
		pos = idx[1]
	}
	if pos < len(line) {
		segs = append(segs, segment{text: line[pos:], plainStart: plain.Len()})
		plain.WriteString(line[pos:])
	}

	matches := findAll(strings.ToLower(plain.String()), q)
	if len(matches) == 0 {
		return line, 0
	}

	var out strings.Builder
	for _, s := range segs {
		if s.escape {
			out.WriteString(s.text)
			continue
		}
		out.WriteString(wrapSegment(s, matches, wrap))
	}
	return out.String(), len(matches)
}

// findAll returns non-overlapping [start, end) ranges of q in s.
func findAll(s, q string) [][2]int {
	var out [][2]int
	start := 0
	for {
		rel := strings.Index(s[start:], q)
		if rel < 0 {
			return out
		}
		at := start + rel
		out = append(out, [2]int{at, at + len(q)})
		start = at + len(q)
	}
}

func wrapSegment(s segment, matches [][2]int, wrap func(string) string) string {
	segStart, segEnd := s.plainStart, s.plainStart+len(s.text)
	var out strings.Builder
	cur := segStart
	for _, m := range matches {
		from, to := max(m[0], segStart), min(m[1], segEnd)
		if from >= to {
			continue
		}
		out.WriteString(s.text[cur-segStart : from-segStart])
		out.WriteString(wrap(s.text[from-segStart : to-segStart]))
		cur = to
	}
	out.WriteString(s.text[cur-segStart:])
	return out.String()
}

// Next returns the first match line after current, wrapping around; Prev
// goes the other way. Both return -1 when there are no matches.
func (r Result) Next(current int) int {
	if len(r.Lines) == 0 {
		return -1
	}
	for _, l := range r.Lines {
		if l > current {
			return l
		}
	}
	return r.Lines[0]
}

func (r Result) Prev(current int) int {
	if len(r.Lines) == 0 {
		return -1
	}
	for i := len(r.Lines) - 1; i >= 0; i-- {
		if r.Lines[i] < current {
			return r.Lines[i]
		}
	}
	return r.Lines[len(r.Lines)-1]
}

// Status is the footer text for a search, such as `3 matches for "kb"`.
func (r Result) Status(query string) string {
	switch r.Count {
	case 0:
		return fmt.Sprintf("no matches for %q", query)
	case 1:
		return fmt.Sprintf("1 match for %q", query)
	default:
		return fmt.Sprintf("%d matches for %q", r.Count, query)
	}
}
