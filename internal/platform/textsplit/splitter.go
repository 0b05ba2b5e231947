// Package textsplit cuts document text into overlapping windows sized for
// embedding models.
package textsplit

import "unicode"

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Splitter produces chunks of at most Size runes. Consecutive chunks share
// exactly Overlap runes: chunk n+1 starts Overlap runes before chunk n ends.
type Splitter struct {
	Size    int
	Overlap int
}

func New(size, overlap int) Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}
	return Splitter{Size: size, Overlap: overlap}
}

func Default() Splitter { return New(DefaultChunkSize, DefaultOverlap) }

// Split is deterministic. Cuts prefer a paragraph break, then a line break,
// then a sentence end, then any whitespace; a hard cut at Size is the fallback.
func (s Splitter) Split(text string) []string {
	s = New(s.Size, s.Overlap)
	r := []rune(text)
	if len(r) == 0 {
		return []string{}
	}

	out := make([]string, 0, len(r)/(s.Size-s.Overlap)+1)
	start := 0
	for {
		if len(r)-start <= s.Size {
			out = append(out, string(r[start:]))
			return out
		}
		end := s.cut(r, start)
		out = append(out, string(r[start:end]))
		start = end - s.Overlap
	}
}

// cut picks the end of the window starting at start. The end stays strictly
// past start+Overlap so the next window always advances.
func (s Splitter) cut(r []rune, start int) int {
	hard := start + s.Size
	floor := start + s.Overlap + 1

	if i := lastIndexFunc(r, floor, hard, func(i int) bool {
		return r[i-1] == '\n' && i >= 2 && r[i-2] == '\n'
	}); i > 0 {
		return i
	}
	if i := lastIndexFunc(r, floor, hard, func(i int) bool {
		return r[i-1] == '\n'
	}); i > 0 {
		return i
	}
	if i := lastIndexFunc(r, floor, hard, func(i int) bool {
		return unicode.IsSpace(r[i-1]) && i >= 2 && isSentenceEnd(r[i-2])
	}); i > 0 {
		return i
	}
	if i := lastIndexFunc(r, floor, hard, func(i int) bool {
		return unicode.IsSpace(r[i-1])
	}); i > 0 {
		return i
	}
	return hard
}

// lastIndexFunc scans candidate ends from hi down to lo and returns the first
// one accepted by ok, or -1.
func lastIndexFunc(r []rune, lo, hi int, ok func(end int) bool) int {
	for end := hi; end >= lo; end-- {
		if end > len(r) || end < 1 {
			continue
		}
		if ok(end) {
			return end
		}
	}
	return -1
}

func isSentenceEnd(c rune) bool {
	switch c {
	case '.', '!', '?', ';', '。':
		return true
	default:
		return false
	}
}
