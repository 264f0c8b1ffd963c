package cbf

// Rotation is an object orientation as yaw around the vertical axis, in radians.
type Rotation struct {
	Yaw float64
}

// BoundingBox is a single tracked-object observation as supplied by an external
// perception system each cycle: half-extents, center location and yaw.
type BoundingBox struct {
	Extent   Point
	Location Point
	Rotation Rotation
}

// NewBoundingBox creates a BoundingBox from plain half-extent, location and yaw values.
func NewBoundingBox(extentX, extentY, locationX, locationY, yaw float64) BoundingBox {
	return BoundingBox{
		Extent:   Point{X: extentX, Y: extentY},
		Location: Point{X: locationX, Y: locationY},
		Rotation: Rotation{Yaw: yaw},
	}
}
