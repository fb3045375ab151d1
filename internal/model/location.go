package model

import "fmt"

// Location представляет координаты tile'а в мире.
// Value type, передаётся по значению (immutable).
type Location struct {
	X int32
	Y int32
	Z int32
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y, z int32) Location {
	return Location{X: x, Y: y, Z: z}
}

// Offset возвращает новый Location, сдвинутый на (dx, dy) в той же плоскости.
func (l Location) Offset(dx, dy int32) Location {
	l.X += dx
	l.Y += dy
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt).
func (l Location) DistanceSquared(other Location) int64 {
	dx := int64(l.X - other.X)
	dy := int64(l.Y - other.Y)
	dz := int64(l.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("(%d,%d,%d)", l.X, l.Y, l.Z)
}
