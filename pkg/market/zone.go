package market

import "math"

// Vec3 is a position in the game world.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the euclidean distance between two positions.
func (v Vec3) DistanceTo(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DropZone is a candidate stash location for purchased goods.
type DropZone struct {
	Name     string `json:"name,omitempty"` // optional label, e.g. "docks_container"
	Position Vec3   `json:"position"`
}
