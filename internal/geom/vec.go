package geom

import "math"

// Vec2 is a point or direction in a 2D coordinate space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Div divides component-wise. Division by zero yields zero on that axis.
func (v Vec2) Div(o Vec2) Vec2 {
	var r Vec2
	if o.X != 0 {
		r.X = v.X / o.X
	}
	if o.Y != 0 {
		r.Y = v.Y / o.Y
	}
	return r
}

func (v Vec2) Abs() Vec2 { return Vec2{math.Abs(v.X), math.Abs(v.Y)} }

func (v Vec2) Min(o Vec2) Vec2 { return Vec2{min(v.X, o.X), min(v.Y, o.Y)} }
func (v Vec2) Max(o Vec2) Vec2 { return Vec2{max(v.X, o.X), max(v.Y, o.Y)} }

// Len returns the Euclidean length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Rotate2D rotates v around the origin by radians (clockwise on a y-down canvas).
func Rotate2D(v Vec2, radians float64) Vec2 {
	sin, cos := math.Sincos(radians)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180.0 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
