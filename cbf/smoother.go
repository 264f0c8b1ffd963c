package cbf

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// ObservationSmoother filters raw per-ID bounding-box observations with a
// constant-velocity Kalman filter before they reach Reconcile. IDs are
// persistent (data association happens upstream in the perception system), so
// each ID owns exactly one filter; filters for vanished IDs are dropped. Yaw
// is passed through unfiltered.
type ObservationSmoother[K comparable] struct {
	filters map[K]*kalman_filter.KalmanBBox
	// Time step between perception cycles
	dt float64
	// When the filtered center drifts farther than this from the raw
	// measurement the filter is re-seeded from the measurement. Zero disables
	// the check.
	maxDrift float64
}

// NewObservationSmoother creates a smoother with the given perception cycle
// time step and drift reset distance.
func NewObservationSmoother[K comparable](dt, maxDrift float64) *ObservationSmoother[K] {
	return &ObservationSmoother[K]{
		filters:  make(map[K]*kalman_filter.KalmanBBox),
		dt:       dt,
		maxDrift: maxDrift,
	}
}

func newBBoxFilter(bbox BoundingBox, dt float64) *kalman_filter.KalmanBBox {
	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	return kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(bbox.Location.X, bbox.Location.Y, bbox.Extent.X, bbox.Extent.Y),
	)
}

// Smooth runs one predict/update cycle per observed ID and returns the
// filtered snapshot, keyed identically to the input. The first observation of
// an ID seeds its filter and passes through unchanged.
func (sm *ObservationSmoother[K]) Smooth(observations map[K]BoundingBox) (map[K]BoundingBox, error) {
	smoothed := make(map[K]BoundingBox, len(observations))
	for key, bbox := range observations {
		filter, ok := sm.filters[key]
		if !ok {
			sm.filters[key] = newBBoxFilter(bbox, sm.dt)
			smoothed[key] = bbox
			continue
		}
		filter.Predict()
		err := filter.Update(bbox.Location.X, bbox.Location.Y, bbox.Extent.X, bbox.Extent.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "can't update observation filter for %v", key)
		}
		cx, cy, w, h := filter.GetState()
		if sm.maxDrift > 0 && euclideanDistance(Point{X: cx, Y: cy}, bbox.Location) > sm.maxDrift {
			// Filter diverged from the measurement (e.g. the tracked object
			// was relocated between scenario resets). Re-seed it.
			sm.filters[key] = newBBoxFilter(bbox, sm.dt)
			smoothed[key] = bbox
			continue
		}
		smoothed[key] = BoundingBox{
			Extent:   Point{X: w, Y: h},
			Location: Point{X: cx, Y: cy},
			Rotation: bbox.Rotation,
		}
	}
	// Drop filters for IDs that left the scene, same lifecycle as Reconcile.
	for key := range sm.filters {
		if _, ok := observations[key]; !ok {
			delete(sm.filters, key)
		}
	}
	return smoothed, nil
}
