package particles

import (
	"sync"
	"testing"

	"github.com/df07/go-particle-renderer/pkg/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewStore_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewStore(capacity, nil); err == nil {
			t.Errorf("Expected error for capacity %d", capacity)
		}
	}
}

func TestStore_Add(t *testing.T) {
	store, err := NewStore(2, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	red := NewParticle(core.NewVec3(0, 0, 0), Lambertian, core.NewVec3(1, 0, 0), 0.2)
	if !store.Add(red) {
		t.Fatal("Expected first add to succeed")
	}
	if store.Count() != 1 {
		t.Errorf("Expected count 1, got %d", store.Count())
	}
	if got := store.At(0); got.Color != red.Color || got.Radius != 0.2 {
		t.Errorf("Stored particle mismatch: %+v", got)
	}
	if store.Full() {
		t.Error("Store should not be full yet")
	}
}

func TestStore_CapacityInvariantUnderConcurrentAdds(t *testing.T) {
	const capacity = 100
	const extra = 37

	obsCore, logs := observer.New(zap.WarnLevel)
	store, err := NewStore(capacity, zap.New(obsCore))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < capacity+extra; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := NewParticle(positionAt(i), Lambertian, positionAt(1), 0.1)
			if store.Add(p) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if store.Count() != capacity {
		t.Errorf("Expected count %d, got %d", capacity, store.Count())
	}
	if accepted != capacity {
		t.Errorf("Expected %d accepted adds, got %d", capacity, accepted)
	}
	if store.Dropped() != extra {
		t.Errorf("Expected %d dropped, got %d", extra, store.Dropped())
	}
	if logs.Len() != 1 {
		t.Errorf("Expected a single overflow warning, got %d", logs.Len())
	}

	// Every slot written exactly once: all x coordinates are distinct
	seen := make(map[float64]bool, capacity)
	for i := 0; i < store.Count(); i++ {
		x := store.At(i).Position.X
		if seen[x] {
			t.Fatalf("Slot %d duplicates particle at x=%f", i, x)
		}
		seen[x] = true
	}
}

func TestStore_AtOutOfRangePanics(t *testing.T) {
	store, _ := NewStore(4, nil)
	store.Add(NewParticle(core.Vec3{}, Lambertian, core.Vec3{}, 1))

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for index beyond count")
		}
	}()
	store.At(1)
}

func TestStore_Reset(t *testing.T) {
	store, _ := NewStore(1, nil)
	store.Add(NewParticle(core.Vec3{}, Light, core.Vec3{}, 1))
	store.Add(NewParticle(core.Vec3{}, Light, core.Vec3{}, 1))

	store.Reset()
	if store.Count() != 0 || store.Dropped() != 0 {
		t.Errorf("Expected empty store after reset, got count=%d dropped=%d", store.Count(), store.Dropped())
	}
	if !store.Add(NewParticle(core.Vec3{}, Light, core.Vec3{}, 1)) {
		t.Error("Expected add to succeed after reset")
	}
}

func positionAt(i int) core.Vec3 {
	return core.NewVec3(float64(i), 0, 0)
}
