package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Nearest is the nearest-distance accumulator threaded through a visibility scan.
// Distance is both the upper bound every primitive prunes against and, once the
// scan is over, the distance of the nearest accepted hit.
type Nearest struct {
	Distance float64
}

// NewNearest returns an accumulator with no upper bound
func NewNearest() *Nearest {
	return &Nearest{Distance: math.MaxFloat64}
}

// Offer lowers the bound to t when t is nearer and reports whether it did
func (n *Nearest) Offer(t float64) bool {
	if t < n.Distance {
		n.Distance = t
		return true
	}
	return false
}

// Found reports whether any hit lowered the bound
func (n *Nearest) Found() bool {
	return n.Distance < math.MaxFloat64
}

// Hit pairs an object with one of its hit distances along a ray
type Hit struct {
	Object   Object
	Distance float64
}

// IntersectionList collects every qualifying hit of a multi-hit query.
// Order carries no meaning.
type IntersectionList struct {
	hits []Hit
}

// Add appends a hit
func (l *IntersectionList) Add(obj Object, distance float64) {
	l.hits = append(l.hits, Hit{Object: obj, Distance: distance})
}

// Len returns the number of hits
func (l *IntersectionList) Len() int {
	return len(l.hits)
}

// Hits returns the collected hits. The slice is owned by the list.
func (l *IntersectionList) Hits() []Hit {
	return l.hits
}

// Filter drops the hits at index from onwards for which keep returns false
func (l *IntersectionList) Filter(from int, keep func(Hit) bool) {
	kept := l.hits[:from]
	for _, h := range l.hits[from:] {
		if keep(h) {
			kept = append(kept, h)
		}
	}
	l.hits = kept
}

// Reset empties the list, keeping its storage
func (l *IntersectionList) Reset() {
	l.hits = l.hits[:0]
}

// solveQuadratic returns the real roots of a·t² + b·t + c = 0.
// A leading coefficient within Epsilon of zero yields no roots; a discriminant
// within Epsilon of zero yields the single tangential root.
func solveQuadratic(a, b, c float64) (t1, t2 float64, n int) {
	if core.IsZero(a) {
		return 0, 0, 0
	}
	disc := b*b - 4*a*c
	switch {
	case disc > core.Epsilon:
		sqrtD := math.Sqrt(disc)
		return (-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a), 2
	case core.IsZero(disc):
		return -b / (2 * a), 0, 1
	default:
		return 0, 0, 0
	}
}

// recordRoots feeds the roots of a quadratic through the nearest-distance protocol
func recordRoots(obj Object, ray core.Ray, a, b, c float64, nearest *Nearest, hits *IntersectionList) bool {
	t1, t2, n := solveQuadratic(a, b, c)
	s := obj.Base()
	hit := false
	if n >= 1 && s.record(obj, ray, t1, nearest, hits) {
		hit = true
	}
	if n == 2 && s.record(obj, ray, t2, nearest, hits) {
		hit = true
	}
	return hit
}
