package model

import (
	"errors"
	"fmt"
)

// ErrUnknownLayer is returned when a layer key does not address a grid layer
// of the project.
var ErrUnknownLayer = errors.New("unknown layer")

// Project is a parsed blueprint. Its lookup indices are built once; a
// reimport builds a new Project instead of editing this one.
type Project struct {
	sections []Section
	byID     map[ID]Section
	layers   map[LayerKey]*GridLayer
	order    []LayerKey
	visible  map[LayerKey]struct{}
}

// NewProject indexes sections and every grid layer they own.
func NewProject(sections []Section) *Project {
	p := &Project{
		sections: sections,
		byID:     make(map[ID]Section, len(sections)),
		layers:   make(map[LayerKey]*GridLayer),
		visible:  make(map[LayerKey]struct{}),
	}
	for _, s := range sections {
		p.byID[s.ID()] = s
		gs, ok := s.(*GridSection)
		if !ok {
			continue
		}
		for _, l := range gs.layers {
			key := LayerKey{Section: gs.id, Layer: l.id}
			p.layers[key] = l
			p.order = append(p.order, key)
		}
	}
	return p
}

// Sections returns the sections in file order.
func (p *Project) Sections() []Section { return p.sections }

// Section looks a section up by identity.
func (p *Project) Section(id ID) (Section, bool) {
	s, ok := p.byID[id]
	return s, ok
}

// GridLayer looks a grid layer up by its composite key.
func (p *Project) GridLayer(key LayerKey) (*GridLayer, bool) {
	l, ok := p.layers[key]
	return l, ok
}

// SectionStart returns the start of the section with the given id. The
// result is nil for raw sections declared without a start.
func (p *Project) SectionStart(id ID) (*SectionStart, bool) {
	s, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return s.Start(), true
}

// LayerKeys returns every grid layer key in section then layer order.
func (p *Project) LayerKeys() []LayerKey {
	out := make([]LayerKey, len(p.order))
	copy(out, p.order)
	return out
}

// VisibleLayers returns the visible layer keys in section then layer order.
func (p *Project) VisibleLayers() []LayerKey {
	var out []LayerKey
	for _, k := range p.order {
		if _, ok := p.visible[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// IsLayerVisible reports whether key is in the visible set.
func (p *Project) IsLayerVisible(key LayerKey) bool {
	_, ok := p.visible[key]
	return ok
}

// ShowLayers adds keys to the visible set. Nothing changes when any key is unknown.
func (p *Project) ShowLayers(keys ...LayerKey) error {
	if err := p.checkKeys(keys); err != nil {
		return err
	}
	for _, k := range keys {
		p.visible[k] = struct{}{}
		p.layers[k].visible = true
	}
	return nil
}

// HideLayers removes keys from the visible set. Nothing changes when any key is unknown.
func (p *Project) HideLayers(keys ...LayerKey) error {
	if err := p.checkKeys(keys); err != nil {
		return err
	}
	for _, k := range keys {
		delete(p.visible, k)
		p.layers[k].visible = false
	}
	return nil
}

// ClearVisibleLayers empties the visible set.
func (p *Project) ClearVisibleLayers() {
	for k := range p.visible {
		p.layers[k].visible = false
	}
	clear(p.visible)
}

// SetVisibleLayers replaces the visible set with keys.
func (p *Project) SetVisibleLayers(keys []LayerKey) error {
	if err := p.checkKeys(keys); err != nil {
		return err
	}
	p.ClearVisibleLayers()
	return p.ShowLayers(keys...)
}

func (p *Project) checkKeys(keys []LayerKey) error {
	for _, k := range keys {
		if _, ok := p.layers[k]; !ok {
			return fmt.Errorf("layer %s: %w", k, ErrUnknownLayer)
		}
	}
	return nil
}

// Structure implements the structural serialization hook. View state is
// not part of the document.
func (p *Project) Structure() any {
	sections := p.sections
	if sections == nil {
		sections = []Section{}
	}
	return projectDoc{Sections: sections}
}

type projectDoc struct {
	Sections []Section `json:"sections"`
}
