// Package vmath holds the small set of 2D vector helpers the arena uses.
// Everything here is a pure function on values.
package vmath

import "math"

// Vec2 is a 2D vector in arena units.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Neg returns the vector pointing the opposite way.
func (a Vec2) Neg() Vec2 { return Vec2{-a.X, -a.Y} }

// Len returns the Euclidean length.
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }

// LenSq returns the squared length (no square root).
func (a Vec2) LenSq() float64 { return a.X*a.X + a.Y*a.Y }

// IsFinite reports whether both components are finite numbers.
func (a Vec2) IsFinite() bool {
	return !math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0)
}

// Normalize returns the unit vector in the direction of a. A zero-length or
// non-finite input yields the zero vector.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Rotate turns a by ang radians counter-clockwise (in a y-down screen frame
// this appears clockwise).
func (a Vec2) Rotate(ang float64) Vec2 {
	ca, sa := math.Cos(ang), math.Sin(ang)
	return Vec2{a.X*ca - a.Y*sa, a.X*sa + a.Y*ca}
}

// DistSq returns the squared distance between a and b.
func DistSq(a, b Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// CirclesOverlap reports whether two circles intersect, comparing squared
// distance against the squared radius sum.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	r := ra + rb
	return DistSq(a, b) < r*r
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampTo keeps p inside the rectangle [minX,maxX]×[minY,maxY].
func ClampTo(p Vec2, minX, minY, maxX, maxY float64) Vec2 {
	return Vec2{Clamp(p.X, minX, maxX), Clamp(p.Y, minY, maxY)}
}
