package cbf

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ObstacleCollection is an insertion-ordered mapping from a stable perception
// ID to an obstacle. K is the opaque comparable ID type (e.g. uuid.UUID or
// int). Iteration order is stable between mutations, so all batch products of
// a single solver iteration agree row-by-row; it is not stable across
// Reconcile calls.
type ObstacleCollection[K comparable] struct {
	obstacles map[K]Obstacle
	order     []K
}

// NewObstacleCollection creates an empty collection.
func NewObstacleCollection[K comparable]() *ObstacleCollection[K] {
	return &ObstacleCollection[K]{
		obstacles: make(map[K]Obstacle),
		order:     make([]K, 0),
	}
}

// Set inserts or replaces the obstacle stored under key.
func (oc *ObstacleCollection[K]) Set(key K, obstacle Obstacle) {
	if _, ok := oc.obstacles[key]; !ok {
		oc.order = append(oc.order, key)
	}
	oc.obstacles[key] = obstacle
}

// Get returns the obstacle stored under key.
func (oc *ObstacleCollection[K]) Get(key K) (Obstacle, bool) {
	obstacle, ok := oc.obstacles[key]
	return obstacle, ok
}

// Delete removes the obstacle stored under key. Missing keys are a no-op.
func (oc *ObstacleCollection[K]) Delete(key K) {
	if _, ok := oc.obstacles[key]; !ok {
		return
	}
	delete(oc.obstacles, key)
	for i := range oc.order {
		if oc.order[i] == key {
			oc.order = append(oc.order[:i], oc.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of obstacles in the collection.
func (oc *ObstacleCollection[K]) Len() int {
	return len(oc.order)
}

// Keys returns a copy of the IDs in iteration order. Row i of every batch
// product corresponds to Keys()[i].
func (oc *ObstacleCollection[K]) Keys() []K {
	keys := make([]K, len(oc.order))
	copy(keys, oc.order)
	return keys
}

// Reconcile syncs the collection against a fresh perception snapshot: IDs
// present in both are refreshed in place (instance identity preserved), new
// IDs are constructed as kind with the given buffer and inserted, vanished
// IDs are removed. Updates and insertions complete before any removal, so an
// ID present in both old and new state is never deleted and recreated.
func (oc *ObstacleCollection[K]) Reconcile(observations map[K]BoundingBox, kind ObstacleKind, buffer float64) error {
	for key, bbox := range observations {
		if existing, ok := oc.obstacles[key]; ok {
			if err := existing.UpdateFromObservation(bbox); err != nil {
				return errors.Wrapf(err, "can't update obstacle %v", key)
			}
			continue
		}
		obstacle, err := newObstacleFromBBox(kind, bbox, buffer)
		if err != nil {
			return errors.Wrapf(err, "can't create obstacle %v", key)
		}
		oc.Set(key, obstacle)
	}
	// Snapshot the keys: Delete rewrites the order slice.
	for _, key := range oc.Keys() {
		if _, ok := observations[key]; !ok {
			oc.Delete(key)
		}
	}
	return nil
}

// F stacks every member's barrier value at p into a column vector in
// collection order.
func (oc *ObstacleCollection[K]) F(p Point) *mat.VecDense {
	if len(oc.order) == 0 {
		// gonum panics on zero-sized allocations
		return &mat.VecDense{}
	}
	f := mat.NewVecDense(len(oc.order), nil)
	for idx, key := range oc.order {
		f.SetVec(idx, oc.obstacles[key].F(p))
	}
	return f
}

// Dx stacks every member's Dx value at p into a column vector in collection order.
func (oc *ObstacleCollection[K]) Dx(p Point) *mat.VecDense {
	if len(oc.order) == 0 {
		return &mat.VecDense{}
	}
	dx := mat.NewVecDense(len(oc.order), nil)
	for idx, key := range oc.order {
		dx.SetVec(idx, oc.obstacles[key].Dx(p))
	}
	return dx
}

// Dy stacks every member's Dy value at p into a column vector in collection order.
func (oc *ObstacleCollection[K]) Dy(p Point) *mat.VecDense {
	if len(oc.order) == 0 {
		return &mat.VecDense{}
	}
	dy := mat.NewVecDense(len(oc.order), nil)
	for idx, key := range oc.order {
		dy.SetVec(idx, oc.obstacles[key].Dy(p))
	}
	return dy
}

// Dtheta stacks every member's Dtheta value at p into a column vector in
// collection order.
func (oc *ObstacleCollection[K]) Dtheta(p Point) *mat.VecDense {
	if len(oc.order) == 0 {
		return &mat.VecDense{}
	}
	dtheta := mat.NewVecDense(len(oc.order), nil)
	for idx, key := range oc.order {
		dtheta.SetVec(idx, oc.obstacles[key].Dtheta(p))
	}
	return dtheta
}

// Gradient stacks every member's pose gradient at p into an n-by-3 Jacobian
// whose row order matches F, Dx, Dy and Dtheta for the same collection state.
func (oc *ObstacleCollection[K]) Gradient(p Point) *mat.Dense {
	if len(oc.order) == 0 {
		return &mat.Dense{}
	}
	df := mat.NewDense(len(oc.order), 3, nil)
	for idx, key := range oc.order {
		df.SetRow(idx, oc.obstacles[key].Gradient(p).RawVector().Data)
	}
	return df
}
