package model

import (
	"strconv"
	"strings"
)

// SectionStart is the optional origin of a section, 0-based.
type SectionStart struct {
	X       *int
	Y       *int
	Comment string
}

// NewSectionStart builds a start with both coordinates set.
func NewSectionStart(x, y int, comment string) *SectionStart {
	return &SectionStart{X: &x, Y: &y, Comment: comment}
}

// IsEmpty reports whether no part of the start is set.
func (s *SectionStart) IsEmpty() bool {
	return s == nil || (s.X == nil && s.Y == nil && s.Comment == "")
}

func (s *SectionStart) String() string {
	if s.IsEmpty() {
		return "Empty"
	}
	var parts []string
	if s.X != nil && s.Y != nil {
		parts = append(parts, "("+strconv.Itoa(*s.X)+", "+strconv.Itoa(*s.Y)+")")
	}
	if s.Comment != "" {
		parts = append(parts, s.Comment)
	}
	return strings.Join(parts, " ")
}

func (s *SectionStart) clone() *SectionStart {
	if s == nil {
		return nil
	}
	c := &SectionStart{Comment: s.Comment}
	if s.X != nil {
		x := *s.X
		c.X = &x
	}
	if s.Y != nil {
		y := *s.Y
		c.Y = &y
	}
	return c
}

// Structure implements the structural serialization hook.
func (s *SectionStart) Structure() any {
	return startDoc{X: s.X, Y: s.Y, Comment: optional(s.Comment)}
}

type startDoc struct {
	X       *int    `json:"x"`
	Y       *int    `json:"y"`
	Comment *string `json:"comment"`
}

// Header carries everything a section header line declares.
type Header struct {
	Mode    SectionMode
	Label   string
	Hidden  bool
	Start   *SectionStart
	Message string
	Comment string
}

// Section is either a *RawSection or a *GridSection.
type Section interface {
	ID() ID
	Mode() SectionMode
	Label() string
	Hidden() bool
	SetHidden(bool)
	Start() *SectionStart
	Message() string
	Comment() string

	isSection()
}

type sectionBase struct {
	id      ID
	mode    SectionMode
	label   string
	hidden  bool
	start   *SectionStart
	message string
	comment string
}

func newSectionBase(h Header) sectionBase {
	b := sectionBase{
		id:      NewID(),
		mode:    h.Mode,
		label:   h.Label,
		hidden:  h.Hidden,
		message: h.Message,
		comment: h.Comment,
	}
	if !h.Start.IsEmpty() {
		b.start = h.Start.clone()
	}
	if b.label == "" {
		b.label = b.id.String()
	}
	return b
}

func (s *sectionBase) ID() ID            { return s.id }
func (s *sectionBase) Mode() SectionMode { return s.mode }
func (s *sectionBase) Label() string     { return s.label }
func (s *sectionBase) Hidden() bool      { return s.hidden }
func (s *sectionBase) SetHidden(h bool)  { s.hidden = h }
func (s *sectionBase) Message() string   { return s.message }
func (s *sectionBase) Comment() string   { return s.comment }

// Start returns a copy of the section start, or nil when absent.
func (s *sectionBase) Start() *SectionStart { return s.start.clone() }

func (*sectionBase) isSection() {}

// RawSection keeps its rows unparsed.
type RawSection struct {
	sectionBase
	layer *RawLayer
}

// NewRawSection builds a raw section. A nil layer is replaced by an empty one.
func NewRawSection(h Header, layer *RawLayer) *RawSection {
	if layer == nil {
		layer = NewRawLayer(nil)
	}
	return &RawSection{sectionBase: newSectionBase(h), layer: layer}
}

func (s *RawSection) Layer() *RawLayer { return s.layer }

// Structure implements the structural serialization hook.
func (s *RawSection) Structure() any {
	return rawSectionDoc{sectionDoc: s.doc(), Layer: s.layer}
}

// GridSection holds one grid layer per elevation, in file order.
type GridSection struct {
	sectionBase
	layers []*GridLayer
}

// NewGridSection builds a grid section. An absent start is normalized to (0, 0).
func NewGridSection(h Header, layers []*GridLayer) *GridSection {
	s := &GridSection{sectionBase: newSectionBase(h), layers: layers}
	if s.start == nil {
		s.start = NewSectionStart(0, 0, "")
	}
	return s
}

func (s *GridSection) Layers() []*GridLayer { return s.layers }

// Layer returns the layer with the given id.
func (s *GridSection) Layer(id ID) (*GridLayer, bool) {
	for _, l := range s.layers {
		if l.id == id {
			return l, true
		}
	}
	return nil, false
}

// Structure implements the structural serialization hook.
func (s *GridSection) Structure() any {
	layers := s.layers
	if layers == nil {
		layers = []*GridLayer{}
	}
	return gridSectionDoc{sectionDoc: s.doc(), Layers: layers}
}

type sectionDoc struct {
	Mode    SectionMode   `json:"mode"`
	Label   string        `json:"label"`
	Hidden  bool          `json:"hidden"`
	Start   *SectionStart `json:"start"`
	Message *string       `json:"message"`
	Comment *string       `json:"comment"`
}

type rawSectionDoc struct {
	sectionDoc
	Layer *RawLayer `json:"layer"`
}

type gridSectionDoc struct {
	sectionDoc
	Layers []*GridLayer `json:"layers"`
}

func (s *sectionBase) doc() sectionDoc {
	return sectionDoc{
		Mode:    s.mode,
		Label:   s.label,
		Hidden:  s.hidden,
		Start:   s.start,
		Message: optional(s.message),
		Comment: optional(s.comment),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
