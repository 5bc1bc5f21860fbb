package particles

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrCapacityExceeded is reported when a particle is added to a full store
var ErrCapacityExceeded = errors.New("particle capacity exceeded")

// Store is a fixed-capacity particle array with a lock-free append.
// Adds may run concurrently with each other; reads must not overlap with
// adds still in flight (scene setup completes before rendering starts).
type Store struct {
	particles []Particle
	count     atomic.Int64
	dropped   atomic.Int64
	logger    *zap.Logger
}

// NewStore creates a store holding at most capacity particles
func NewStore(capacity int, logger *zap.Logger) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("store capacity must be positive, got %d", capacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		particles: make([]Particle, capacity),
		logger:    logger,
	}, nil
}

// Add appends a particle if a slot is free and reports whether it was stored.
// A full store drops the particle and logs a warning.
func (s *Store) Add(p Particle) bool {
	capacity := int64(len(s.particles))
	for {
		n := s.count.Load()
		if n >= capacity {
			s.reject()
			return false
		}
		if s.count.CompareAndSwap(n, n+1) {
			s.particles[n] = p
			return true
		}
	}
}

func (s *Store) reject() {
	dropped := s.dropped.Add(1)
	if dropped == 1 {
		s.logger.Warn("max particles reached, cannot add more; consider increasing max particles",
			zap.Int("capacity", len(s.particles)),
			zap.Error(ErrCapacityExceeded))
		return
	}
	s.logger.Debug("particle dropped", zap.Int64("dropped", dropped))
}

// Count returns the number of stored particles
func (s *Store) Count() int {
	return int(s.count.Load())
}

// Capacity returns the fixed maximum particle count
func (s *Store) Capacity() int {
	return len(s.particles)
}

// Full reports whether no more particles can be added
func (s *Store) Full() bool {
	return s.Count() >= len(s.particles)
}

// Dropped returns how many adds were rejected since the last reset
func (s *Store) Dropped() int {
	return int(s.dropped.Load())
}

// At returns a pointer to the i-th particle. It panics when i is outside [0, Count()).
func (s *Store) At(i int) *Particle {
	n := s.Count()
	if i < 0 || i >= n {
		panic(fmt.Sprintf("particles: index out of range [%d] with count %d", i, n))
	}
	return &s.particles[i]
}

// Active returns the stored particles. The slice aliases the store.
func (s *Store) Active() []Particle {
	return s.particles[:s.Count()]
}

// Reset empties the store for a scene restart
func (s *Store) Reset() {
	clear(s.particles[:s.Count()])
	s.count.Store(0)
	s.dropped.Store(0)
}
