// Package fingerprint reduces a blueprint to a fixed-length vector that can
// be compared by cosine distance.
package fingerprint

import (
	"math"

	"qfparse/internal/model"
)

// Dimensions is the length of every fingerprint: one slot per designation
// code, in sorted code order.
var Dimensions = len(model.DesignationValues())

var slots = func() map[model.Designation]int {
	out := make(map[model.Designation]int, Dimensions)
	for i, code := range model.DesignationValues() {
		d, _ := model.ParseDesignation(code)
		out[d] = i
	}
	return out
}()

// Histogram counts designation cells across every grid layer of p.
// Expansion continuations count like any other cell.
func Histogram(p *model.Project) map[model.Designation]int {
	counts := make(map[model.Designation]int)
	for _, s := range p.Sections() {
		gs, ok := s.(*model.GridSection)
		if !ok {
			continue
		}
		for _, l := range gs.Layers() {
			l.Each(func(_, _ int, c model.Cell) {
				if dc, ok := c.(*model.DesignationCell); ok {
					counts[dc.Designation]++
				}
			})
		}
	}
	return counts
}

// Of returns the L2-normalized histogram of p. A project without designation
// cells yields the zero vector.
func Of(p *model.Project) []float32 {
	return Normalize(Histogram(p))
}

// Normalize lays counts out in slot order and scales them to unit length.
func Normalize(counts map[model.Designation]int) []float32 {
	vec := make([]float32, Dimensions)
	var sum float64
	for d, n := range counts {
		i, ok := slots[d]
		if !ok || n <= 0 {
			continue
		}
		vec[i] = float32(n)
		sum += float64(n) * float64(n)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// IsZero reports whether vec has no non-zero component.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
