package parser

import (
	"strconv"
	"strings"

	"qfparse/internal/model"
)

// ParseHeader parses a section header line:
//
//	#<mode> [start(...)] [message(...)] [hidden(...)] [label(...)] [comment]
//
// Markers may appear in any order, each at most once. Free text inside
// message, label and the trailing comment may contain balanced parentheses,
// which are kept verbatim. ok is false when line is not a header; the row
// is then ordinary data.
func ParseHeader(line, fallbackLabel string) (h model.Header, ok bool) {
	s := &headerScanner{src: line}
	s.skipSpace()
	if !s.consume("#") {
		return model.Header{}, false
	}
	s.skipSpace()
	mode, ok := s.mode()
	if !ok {
		return model.Header{}, false
	}

	h = model.Header{Mode: mode, Label: fallbackLabel}
	s.skipSpace()
	s.markers(&h)

	comment := s.freeText()
	if !s.done() {
		return model.Header{}, false
	}
	if strings.TrimSpace(comment) != "" {
		h.Comment = comment
	}
	return h, true
}

type headerScanner struct {
	src string
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (s *headerScanner) done() bool { return s.pos >= len(s.src) }

func (s *headerScanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.src[s.pos]
}

func (s *headerScanner) skipSpace() {
	for !s.done() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *headerScanner) consume(lit string) bool {
	if !strings.HasPrefix(s.src[s.pos:], lit) {
		return false
	}
	s.pos += len(lit)
	return true
}

func (s *headerScanner) mode() (model.SectionMode, bool) {
	for _, m := range model.AllSectionModes {
		if s.consume(string(m)) {
			return m, true
		}
	}
	return "", false
}

// markers consumes markers until none of the remaining ones matches. A
// marker that fails part way leaves the position where it was.
func (s *headerScanner) markers(h *model.Header) {
	seen := make(map[model.Marker]bool, len(model.AllMarkers))
	for {
		matched := false
		for _, m := range model.AllMarkers {
			if seen[m] {
				continue
			}
			save := s.pos
			s.skipSpace()
			if s.marker(m, h) {
				seen[m] = true
				matched = true
				break
			}
			s.pos = save
		}
		if !matched {
			return
		}
	}
}

func (s *headerScanner) marker(m model.Marker, h *model.Header) bool {
	if !s.consume(string(m)) {
		return false
	}
	switch m {
	case model.MarkerStart:
		start, ok := s.start()
		if ok {
			h.Start = start
		}
		return ok
	case model.MarkerMessage:
		text, ok := s.group(false)
		if ok {
			h.Message = text
		}
		return ok
	case model.MarkerHidden:
		_, ok := s.group(false)
		if ok {
			h.Hidden = true
		}
		return ok
	case model.MarkerLabel:
		text, ok := s.group(true)
		if ok {
			h.Label = text
		}
		return ok
	}
	return false
}

// group reads "(" free-text ")". With letterFirst the text must begin
// with an ASCII letter right after the parenthesis.
func (s *headerScanner) group(letterFirst bool) (string, bool) {
	s.skipSpace()
	if !s.consume("(") {
		return "", false
	}
	if letterFirst && !isLetter(s.peek()) {
		return "", false
	}
	text := s.freeText()
	if !s.consume(")") {
		return "", false
	}
	return text, true
}

// start reads "(" [X sep Y [sep]] comment ")". Coordinates are 1-based in
// the text and returned 0-based. The start is nil when neither coordinates
// nor a non-blank comment are present.
func (s *headerScanner) start() (*model.SectionStart, bool) {
	s.skipSpace()
	if !s.consume("(") {
		return nil, false
	}
	x, y, hasXY := s.coordinates()
	comment := s.freeText()
	if !s.consume(")") {
		return nil, false
	}
	if strings.TrimSpace(comment) == "" {
		comment = ""
	}
	switch {
	case hasXY:
		return model.NewSectionStart(x-1, y-1, comment), true
	case comment != "":
		return &model.SectionStart{Comment: comment}, true
	}
	return nil, true
}

func (s *headerScanner) coordinates() (x, y int, ok bool) {
	save := s.pos
	x, ok = s.integer()
	if ok && s.separator() {
		y, ok = s.integer()
		if ok {
			s.separator()
			return x, y, true
		}
	}
	s.pos = save
	return 0, 0, false
}

func (s *headerScanner) integer() (int, bool) {
	s.skipSpace()
	begin := s.pos
	for !s.done() && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == begin {
		return 0, false
	}
	n, err := strconv.Atoi(s.src[begin:s.pos])
	if err != nil {
		return 0, false
	}
	return n, true
}

// separator accepts a comma or semicolon (optionally preceded by blanks),
// or a run of blanks on its own.
func (s *headerScanner) separator() bool {
	k := s.pos
	for k < len(s.src) && isSpace(s.src[k]) {
		k++
	}
	if k < len(s.src) && (s.src[k] == ',' || s.src[k] == ';') {
		s.pos = k + 1
		return true
	}
	if k > s.pos {
		s.pos = k
		return true
	}
	return false
}

// freeText consumes text up to the first unmatched ")" or the first "("
// that is never closed, and returns it verbatim.
func (s *headerScanner) freeText() string {
	begin := s.pos
	for !s.done() {
		switch s.src[s.pos] {
		case ')':
			return s.src[begin:s.pos]
		case '(':
			end := matchingClose(s.src, s.pos)
			if end < 0 {
				return s.src[begin:s.pos]
			}
			s.pos = end + 1
		default:
			s.pos++
		}
	}
	return s.src[begin:s.pos]
}

func matchingClose(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
