package cbf

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Warning-grade sentinels for redundant buffer toggles. The call completes
// as a no-op and the control loop keeps running; callers may check or ignore.
var (
	ErrBufferApplied = errors.New("buffer already applied, call ignored")
	ErrBufferRemoved = errors.New("buffer already removed, call ignored")
)

var (
	// ErrDegenerateAxes is returned when an operation would drive a semi-axis
	// to zero or below, which makes the barrier field undefined.
	ErrDegenerateAxes = errors.New("semi-axes must stay positive")
	// ErrNegativeBuffer is returned for a negative inflation buffer.
	ErrNegativeBuffer = errors.New("buffer must be non-negative")
)

// Ellipse is an oriented 2D ellipse obstacle for use as a CBF constraint.
// Stored semi-axes are effective: the inflation buffer is folded in at
// construction time, so F and Gradient act on the buffered shape unless
// RemoveBuffer is called. It implements the Obstacle interface.
type Ellipse struct {
	a             float64
	b             float64
	center        Point
	theta         float64
	buffer        float64
	bufferApplied bool
}

// NewEllipse creates an ellipse with semi-axes a and b inflated by buffer,
// centered at center and rotated by theta radians.
func NewEllipse(a, b float64, center Point, theta, buffer float64) (*Ellipse, error) {
	if buffer < 0 {
		return nil, errors.Wrapf(ErrNegativeBuffer, "buffer %f", buffer)
	}
	if a+buffer <= 0 || b+buffer <= 0 {
		return nil, errors.Wrapf(ErrDegenerateAxes, "a %f, b %f, buffer %f", a, b, buffer)
	}
	return &Ellipse{
		a:             a + buffer,
		b:             b + buffer,
		center:        center,
		theta:         theta,
		buffer:        buffer,
		bufferApplied: true,
	}, nil
}

// NewEllipseFromBBox creates an ellipse from a tracked bounding box:
// half-extents become semi-axes, location becomes the center, yaw becomes
// the orientation.
func NewEllipseFromBBox(bbox BoundingBox, buffer float64) (*Ellipse, error) {
	center := Point{X: bbox.Location.X, Y: bbox.Location.Y}
	return NewEllipse(bbox.Extent.X, bbox.Extent.Y, center, bbox.Rotation.Yaw, buffer)
}

// GetSemiAxes returns the current effective semi-axes (a, b).
func (el *Ellipse) GetSemiAxes() (float64, float64) {
	return el.a, el.b
}

// GetCenter returns the ellipse center.
func (el *Ellipse) GetCenter() Point {
	return el.center
}

// GetTheta returns the ellipse orientation in radians.
func (el *Ellipse) GetTheta() float64 {
	return el.theta
}

// GetBuffer returns the inflation buffer value.
func (el *Ellipse) GetBuffer() float64 {
	return el.buffer
}

// IsBufferApplied reports whether the buffer is currently folded into the
// effective semi-axes.
func (el *Ellipse) IsBufferApplied() bool {
	return el.bufferApplied
}

// SetCenter moves the ellipse center.
func (el *Ellipse) SetCenter(center Point) {
	el.center = center
}

// SetTheta sets the ellipse orientation in radians.
func (el *Ellipse) SetTheta(yaw float64) {
	el.theta = yaw
}

// ApplyBuffer folds the inflation buffer into the effective semi-axes.
// Calling it while the buffer is already applied is a no-op reported via
// ErrBufferApplied.
func (el *Ellipse) ApplyBuffer() error {
	if el.bufferApplied {
		return ErrBufferApplied
	}
	el.a = el.a + el.buffer
	el.b = el.b + el.buffer
	el.bufferApplied = true
	return nil
}

// RemoveBuffer takes the inflation buffer back out of the effective
// semi-axes. Calling it while the buffer is already removed is a no-op
// reported via ErrBufferRemoved. Removal that would collapse a semi-axis
// fails with ErrDegenerateAxes and leaves the ellipse unchanged.
func (el *Ellipse) RemoveBuffer() error {
	if !el.bufferApplied {
		return ErrBufferRemoved
	}
	if el.a-el.buffer <= 0 || el.b-el.buffer <= 0 {
		return errors.Wrapf(ErrDegenerateAxes, "a %f, b %f, buffer %f", el.a, el.b, el.buffer)
	}
	el.a = el.a - el.buffer
	el.b = el.b - el.buffer
	el.bufferApplied = false
	return nil
}

// Evaluate returns the barrier value at p: the offset from the center is
// rotated into the ellipse's local frame, normalized by the semi-axes and
// summed as squares minus one. Negative inside, zero on the boundary,
// positive outside.
func (el *Ellipse) Evaluate(p Point) float64 {
	dx := p.X - el.center.X
	dy := p.Y - el.center.Y
	ct := math.Cos(el.theta)
	st := math.Sin(el.theta)

	return math.Pow((dx*ct+dy*st)/el.a, 2) + math.Pow((-dx*st+dy*ct)/el.b, 2) - 1
}

// F is an alias of Evaluate, named after the constraint notation of the
// downstream QP solver.
func (el *Ellipse) F(p Point) float64 {
	return el.Evaluate(p)
}

// Dx returns the partial derivative of F with respect to the center x
// coordinate, with p held fixed.
func (el *Ellipse) Dx(p Point) float64 {
	xd := p.X - el.center.X
	yd := p.Y - el.center.Y
	ct := math.Cos(el.theta)
	st := math.Sin(el.theta)

	return (2*ct/math.Pow(el.a, 2))*(xd*ct+yd*st) + (-2*st/math.Pow(el.b, 2))*(-xd*st+yd*ct)
}

// Dy returns the partial derivative of F with respect to the center y
// coordinate, with p held fixed.
func (el *Ellipse) Dy(p Point) float64 {
	xd := p.X - el.center.X
	yd := p.Y - el.center.Y
	ct := math.Cos(el.theta)
	st := math.Sin(el.theta)

	return (2*st/math.Pow(el.a, 2))*(xd*ct+yd*st) + (2*ct/math.Pow(el.b, 2))*(-xd*st+yd*ct)
}

// Dtheta returns the partial derivative of F with respect to the ellipse
// orientation. It is identically zero for this variant and kept for API
// uniformity with non-symmetric obstacle variants.
func (el *Ellipse) Dtheta(p Point) float64 {
	return 0
}

// Gradient returns [Dx, Dy, Dtheta] at p as a length-3 column vector,
// matching one Jacobian row of the stacked constraint set.
func (el *Ellipse) Gradient(p Point) *mat.VecDense {
	return mat.NewVecDense(3, []float64{el.Dx(p), el.Dy(p), el.Dtheta(p)})
}

// Update applies a partial, named-field update. When a new buffer value is
// supplied while the buffer is applied, the effective semi-axes are rewritten
// in the same call (a = a - oldBuffer + newBuffer) so the un-buffered shape
// is preserved. Either every supplied field lands or none does.
func (el *Ellipse) Update(opts ...UpdateOption) error {
	var params updateParams
	for _, opt := range opts {
		opt(&params)
	}

	next := *el
	if params.a != nil {
		next.a = *params.a
	}
	if params.b != nil {
		next.b = *params.b
	}
	if params.center != nil {
		next.center = *params.center
	}
	if params.theta != nil {
		next.theta = *params.theta
	}
	if params.buffer != nil {
		if *params.buffer < 0 {
			return errors.Wrapf(ErrNegativeBuffer, "buffer %f", *params.buffer)
		}
		if next.bufferApplied {
			next.a = next.a - next.buffer + *params.buffer
			next.b = next.b - next.buffer + *params.buffer
		}
		next.buffer = *params.buffer
	}
	if next.a <= 0 || next.b <= 0 {
		return errors.Wrapf(ErrDegenerateAxes, "a %f, b %f", next.a, next.b)
	}
	*el = next
	return nil
}

// UpdateFromObservation refreshes pose and shape from a tracked bounding box:
// semi-axes become the observed half-extents as-is. The inflation buffer is
// NOT folded back in on this path and the buffer-applied flag is left
// untouched; callers that want the buffered shape after a perception refresh
// must reapply their buffer policy.
func (el *Ellipse) UpdateFromObservation(bbox BoundingBox) error {
	return el.Update(
		WithA(bbox.Extent.X),
		WithB(bbox.Extent.Y),
		WithCenter(Point{X: bbox.Location.X, Y: bbox.Location.Y}),
		WithTheta(bbox.Rotation.Yaw),
	)
}

func (el *Ellipse) String() string {
	return fmt.Sprintf("Ellipse(a = %f, b = %f, center = (%f, %f), theta = %f, buffer = %f, buffer applied: %t)",
		el.a, el.b, el.center.X, el.center.Y, el.theta, el.buffer, el.bufferApplied)
}
