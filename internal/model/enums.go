package model

import "sort"

// Designation is the action a dig-mode cell asks for.
type Designation string

const (
	Mine               Designation = "d"
	ChopTree           Designation = "t"
	Channel            Designation = "h"
	UpStair            Designation = "u"
	DownStair          Designation = "j"
	UpDownStair        Designation = "i"
	Ramp               Designation = "r"
	RemoveRamps        Designation = "z"
	Gather             Designation = "p"
	Smooth             Designation = "s"
	Engrave            Designation = "e"
	Fortification      Designation = "F"
	Track              Designation = "T"
	ToggleEngravings   Designation = "v"
	ToggleMarker       Designation = "M"
	RemoveConstruction Designation = "n"
	RemoveDesignation  Designation = "x"
	Claim              Designation = "bc"
	Forbid             Designation = "bf"
	Melt               Designation = "bm"
	RemoveMelt         Designation = "bM"
	Dump               Designation = "bd"
	RemoveDump         Designation = "bD"
	Hide               Designation = "bh"
	RemoveHide         Designation = "bH"
	HighTraffic        Designation = "oh"
	NormalTraffic      Designation = "on"
	LowTraffic         Designation = "ol"
	RestrictedTraffic  Designation = "or"
)

var designationNames = map[Designation]string{
	Mine:               "mine",
	ChopTree:           "chop tree",
	Channel:            "channel",
	UpStair:            "up stair",
	DownStair:          "down stair",
	UpDownStair:        "up/down stair",
	Ramp:               "ramp",
	RemoveRamps:        "remove ramps",
	Gather:             "gather",
	Smooth:             "smooth",
	Engrave:            "engrave",
	Fortification:      "fortification",
	Track:              "track",
	ToggleEngravings:   "toggle engravings",
	ToggleMarker:       "toggle marker",
	RemoveConstruction: "remove construction",
	RemoveDesignation:  "remove designation",
	Claim:              "claim",
	Forbid:             "forbid",
	Melt:               "melt",
	RemoveMelt:         "remove melt",
	Dump:               "dump",
	RemoveDump:         "remove dump",
	Hide:               "hide",
	RemoveHide:         "remove hide",
	HighTraffic:        "high traffic",
	NormalTraffic:      "normal traffic",
	LowTraffic:         "low traffic",
	RestrictedTraffic:  "restricted traffic",
}

// Marker is an optional annotation on a section header.
type Marker string

const (
	MarkerStart   Marker = "start"
	MarkerMessage Marker = "message"
	MarkerHidden  Marker = "hidden"
	MarkerLabel   Marker = "label"
)

// SectionMode is the mode keyword that opens a section.
type SectionMode string

const (
	ModeDig     SectionMode = "dig"
	ModeBuild   SectionMode = "build"
	ModePlace   SectionMode = "place"
	ModeZone    SectionMode = "zone"
	ModeQuery   SectionMode = "query"
	ModeMeta    SectionMode = "meta"
	ModeNotes   SectionMode = "notes"
	ModeIgnore  SectionMode = "ignore"
	ModeAliases SectionMode = "aliases"
)

// AllSectionModes lists the modes in declaration order. The header grammar
// tries them in this order.
var AllSectionModes = []SectionMode{
	ModeDig, ModeBuild, ModePlace, ModeZone, ModeQuery,
	ModeMeta, ModeNotes, ModeIgnore, ModeAliases,
}

// AllMarkers lists the markers in the order the header grammar tries them.
var AllMarkers = []Marker{MarkerStart, MarkerMessage, MarkerHidden, MarkerLabel}

var (
	designationLookup = lookupTable(keys(designationNames))
	markerLookup      = lookupTable(AllMarkers)
	modeLookup        = lookupTable(AllSectionModes)
)

// ParseDesignation resolves a designation code. Lookup is exact and case sensitive.
func ParseDesignation(s string) (Designation, bool) {
	d, ok := designationLookup[s]
	return d, ok
}

// DesignationValues returns every designation code, sorted.
func DesignationValues() []string { return sortedKeys(designationLookup) }

func (d Designation) String() string { return string(d) }

// Name returns a human readable name, or the code itself for unknown values.
func (d Designation) Name() string {
	if n, ok := designationNames[d]; ok {
		return n
	}
	return string(d)
}

// ParseMarker resolves a marker keyword.
func ParseMarker(s string) (Marker, bool) {
	m, ok := markerLookup[s]
	return m, ok
}

// MarkerValues returns every marker keyword, sorted.
func MarkerValues() []string { return sortedKeys(markerLookup) }

func (m Marker) String() string { return string(m) }

// ParseSectionMode resolves a mode keyword.
func ParseSectionMode(s string) (SectionMode, bool) {
	m, ok := modeLookup[s]
	return m, ok
}

// SectionModeValues returns every mode keyword, sorted.
func SectionModeValues() []string { return sortedKeys(modeLookup) }

func (m SectionMode) String() string { return string(m) }

// IsGrid reports whether sections of this mode carry a spatial grid.
func (m SectionMode) IsGrid() bool {
	switch m {
	case ModeDig, ModeBuild, ModePlace, ModeQuery, ModeZone:
		return true
	}
	return false
}

// UsesDesignations reports whether grid cells of this mode are validated
// against the designation vocabulary.
func (m SectionMode) UsesDesignations() bool { return m == ModeDig }

func keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func lookupTable[T ~string](values []T) map[string]T {
	out := make(map[string]T, len(values))
	for _, v := range values {
		out[string(v)] = v
	}
	return out
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
