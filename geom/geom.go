// SPDX-License-Identifier: Unlicense OR MIT

/*
Package geom implements points, sizes, rectangles and margins over
integer and floating point coordinates.

The coordinate space has the origin in the top left
corner with the axes extending right and down.
*/
package geom

import "golang.org/x/exp/constraints"

// Number is the set of coordinate types.
type Number interface {
	constraints.Integer | constraints.Float
}

// A Point is a two dimensional point.
type Point[N Number] struct {
	X, Y N
}

// Size is a width and a height.
type Size[N Number] struct {
	W, H N
}

// A Rect is the area of size (W, H) with its top left corner at
// (X, Y).
type Rect[N Number] struct {
	X, Y, W, H N
}

// Margins are distances from each edge of a rectangle.
type Margins[N Number] struct {
	L, R, T, B N
}

type (
	IPoint   = Point[int32]
	ISize    = Size[int32]
	IRect    = Rect[int32]
	IMargins = Margins[int32]

	FPoint   = Point[float32]
	FSize    = Size[float32]
	FRect    = Rect[float32]
	FMargins = Margins[float32]
)

// Pt is shorthand for Point{X: x, Y: y}.
func Pt[N Number](x, y N) Point[N] {
	return Point[N]{X: x, Y: y}
}

// Sz is shorthand for Size{W: w, H: h}.
func Sz[N Number](w, h N) Size[N] {
	return Size[N]{W: w, H: h}
}

// Add return the point p+p2.
func (p Point[N]) Add(p2 Point[N]) Point[N] {
	return Point[N]{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point[N]) Sub(p2 Point[N]) Point[N] {
	return Point[N]{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// Empty reports whether either dimension is zero or negative.
func (s Size[N]) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Area returns W*H.
func (s Size[N]) Area() N {
	return s.W * s.H
}

// RectFromSize returns the rectangle of size s at the origin.
func RectFromSize[N Number](s Size[N]) Rect[N] {
	return Rect[N]{W: s.W, H: s.H}
}

// Pos returns the top left corner of r.
func (r Rect[N]) Pos() Point[N] {
	return Point[N]{X: r.X, Y: r.Y}
}

// Size returns r's width and height.
func (r Rect[N]) Size() Size[N] {
	return Size[N]{W: r.W, H: r.H}
}

// Max returns the bottom right corner of r, exclusive.
func (r Rect[N]) Max() Point[N] {
	return Point[N]{X: r.X + r.W, Y: r.Y + r.H}
}

// Empty reports whether r contains no points.
func (r Rect[N]) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p is inside r.
func (r Rect[N]) Contains(p Point[N]) bool {
	return r.X <= p.X && p.X < r.X+r.W &&
		r.Y <= p.Y && p.Y < r.Y+r.H
}

// Intersect returns the intersection of r and s. The result is the
// zero Rect if they don't overlap.
func (r Rect[N]) Intersect(s Rect[N]) Rect[N] {
	x0, y0 := max(r.X, s.X), max(r.Y, s.Y)
	x1, y1 := min(r.X+r.W, s.X+s.W), min(r.Y+r.H, s.Y+s.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect[N]{}
	}
	return Rect[N]{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inset shrinks r by m.
func (r Rect[N]) Inset(m Margins[N]) Rect[N] {
	return Rect[N]{
		X: r.X + m.L,
		Y: r.Y + m.T,
		W: r.W - m.L - m.R,
		H: r.H - m.T - m.B,
	}
}

// Outset grows r by m.
func (r Rect[N]) Outset(m Margins[N]) Rect[N] {
	return Rect[N]{
		X: r.X - m.L,
		Y: r.Y - m.T,
		W: r.W + m.L + m.R,
		H: r.H + m.T + m.B,
	}
}

// Convert a point between coordinate types.
func ConvPoint[M, N Number](p Point[N]) Point[M] {
	return Point[M]{X: M(p.X), Y: M(p.Y)}
}

// ConvSize converts a size between coordinate types.
func ConvSize[M, N Number](s Size[N]) Size[M] {
	return Size[M]{W: M(s.W), H: M(s.H)}
}
