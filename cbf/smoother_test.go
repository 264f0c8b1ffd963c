package cbf

import (
	"testing"

	"github.com/google/uuid"
)

func TestSmootherSeedsAndPassesThrough(t *testing.T) {
	sm := NewObservationSmoother[int](1.0/25.0, 0)
	observations := map[int]BoundingBox{
		1: NewBoundingBox(2, 1, 10, 5, 0.3),
	}

	smoothed, err := sm.Smooth(observations)
	if err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if len(smoothed) != 1 {
		t.Fatalf("Expected 1 smoothed observation, got %d", len(smoothed))
	}
	if smoothed[1] != observations[1] {
		t.Errorf("First observation should pass through unchanged, got %v", smoothed[1])
	}
	if len(sm.filters) != 1 {
		t.Errorf("Expected 1 filter after seeding, got %d", len(sm.filters))
	}
}

func TestSmootherTracksStationaryObject(t *testing.T) {
	sm := NewObservationSmoother[int](1.0/25.0, 0)
	raw := NewBoundingBox(2, 1, 10, 5, 0.3)

	var smoothed map[int]BoundingBox
	var err error
	for i := 0; i < 25; i++ {
		smoothed, err = sm.Smooth(map[int]BoundingBox{1: raw})
		if err != nil {
			t.Fatalf("Smooth failed at cycle %d: %v", i, err)
		}
	}

	got := smoothed[1]
	if euclideanDistance(got.Location, raw.Location) > 0.5 {
		t.Errorf("Smoothed location %v drifted from stationary measurement %v", got.Location, raw.Location)
	}
	if got.Extent.X <= 0 || got.Extent.Y <= 0 {
		t.Errorf("Smoothed extents should stay positive, got %v", got.Extent)
	}
	if got.Rotation != raw.Rotation {
		t.Errorf("Yaw should pass through unfiltered, got %v", got.Rotation)
	}
}

func TestSmootherDropsVanishedIDs(t *testing.T) {
	sm := NewObservationSmoother[uuid.UUID](1.0/25.0, 0)
	first := uuid.New()
	second := uuid.New()

	snapshot := map[uuid.UUID]BoundingBox{
		first:  NewBoundingBox(2, 1, 0, 0, 0),
		second: NewBoundingBox(1, 1, 5, 5, 0),
	}
	if _, err := sm.Smooth(snapshot); err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if len(sm.filters) != 2 {
		t.Fatalf("Expected 2 filters, got %d", len(sm.filters))
	}

	delete(snapshot, first)
	if _, err := sm.Smooth(snapshot); err != nil {
		t.Fatalf("Smooth failed: %v", err)
	}
	if len(sm.filters) != 1 {
		t.Fatalf("Expected 1 filter after ID vanished, got %d", len(sm.filters))
	}
	if _, ok := sm.filters[second]; !ok {
		t.Error("Filter for the surviving ID should remain")
	}
}
