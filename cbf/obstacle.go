package cbf

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ObstacleKind selects the concrete obstacle variant constructed by reconciliation
// when a new ID enters the scene.
type ObstacleKind uint16

const (
	// KindEllipse2D is an oriented ellipse with an inflation buffer
	KindEllipse2D ObstacleKind = iota
)

// ErrUnknownObstacleKind is returned when reconciliation is asked to construct
// an obstacle variant it does not know about.
var ErrUnknownObstacleKind = errors.New("unknown obstacle kind")

// Obstacle is the interface for 2D barrier-function obstacles.
// Evaluate (and its alias F) is the scalar barrier value at a query point:
// negative inside the shape, zero on the boundary, positive outside.
// Dx, Dy and Dtheta are partial derivatives of F with respect to the
// obstacle's own center coordinates and orientation, with the query point
// held fixed. The Jacobian a solver builds from Gradient must stay
// algebraically consistent with F.
type Obstacle interface {
	// Barrier field
	Evaluate(p Point) float64
	F(p Point) float64

	// Partial derivatives w.r.t. the obstacle's pose
	Dx(p Point) float64
	Dy(p Point) float64
	Dtheta(p Point) float64
	Gradient(p Point) *mat.VecDense

	// Pose/shape maintenance
	Update(opts ...UpdateOption) error
	UpdateFromObservation(bbox BoundingBox) error
}

// UpdateOption is a partial, named-field update of obstacle pose/shape
// parameters. Only the fields carried by the supplied options mutate.
type UpdateOption func(*updateParams)

type updateParams struct {
	a      *float64
	b      *float64
	center *Point
	theta  *float64
	buffer *float64
}

// WithA sets the effective semi-axis along the obstacle's local x axis.
func WithA(a float64) UpdateOption {
	return func(u *updateParams) { u.a = &a }
}

// WithB sets the effective semi-axis along the obstacle's local y axis.
func WithB(b float64) UpdateOption {
	return func(u *updateParams) { u.b = &b }
}

// WithCenter sets the obstacle center.
func WithCenter(center Point) UpdateOption {
	return func(u *updateParams) { u.center = &center }
}

// WithTheta sets the obstacle orientation in radians.
func WithTheta(theta float64) UpdateOption {
	return func(u *updateParams) { u.theta = &theta }
}

// WithBuffer sets a new inflation buffer. If the buffer is currently folded
// into the semi-axes, they are rewritten in the same call so the un-buffered
// shape is preserved.
func WithBuffer(buffer float64) UpdateOption {
	return func(u *updateParams) { u.buffer = &buffer }
}

// newObstacleFromBBox is the single boundary point where an external
// observation becomes an owned obstacle value.
func newObstacleFromBBox(kind ObstacleKind, bbox BoundingBox, buffer float64) (Obstacle, error) {
	switch kind {
	case KindEllipse2D:
		return NewEllipseFromBBox(bbox, buffer)
	default:
		return nil, errors.Wrapf(ErrUnknownObstacleKind, "kind %d", kind)
	}
}
